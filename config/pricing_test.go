package config_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"ola/config"
)

var _ = Describe("Pricing", func() {
	It("prices catalog models per million tokens", func() {
		Expect(config.EstimateCost("gpt-4o", 1_000_000, 1_000_000)).To(BeNumerically("~", 12.50, 1e-9))
	})

	It("matches dated and prefixed names to the catalog entry", func() {
		p, ok := config.LookupPricing("gpt-4o-2024-08-06")
		Expect(ok).To(BeTrue())
		Expect(p).To(Equal(config.PricingTable["gpt-4o"]))

		p, ok = config.LookupPricing("models/gemini-1.5-flash")
		Expect(ok).To(BeTrue())
		Expect(p).To(Equal(config.PricingTable["gemini-1.5-flash"]))
	})

	It("prefers the longest matching name", func() {
		p, ok := config.LookupPricing("o4-mini-high-2025-04-16")
		Expect(ok).To(BeTrue())
		Expect(p).To(Equal(config.PricingTable["o4-mini-high"]))
	})

	It("returns zero for unknown models", func() {
		_, ok := config.LookupPricing("llama3")
		Expect(ok).To(BeFalse())
		Expect(config.EstimateCost("llama3", 500, 500)).To(BeZero())
	})
})
