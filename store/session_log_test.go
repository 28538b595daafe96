package store_test

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"ola/store"
)

var _ = Describe("Session log", func() {
	runSessionLogTests := func(newStore func() (store.Store, func())) {
		var (
			log     store.Store
			cleanup func()
			ctx     context.Context
			base    time.Time
		)

		BeforeEach(func() {
			log, cleanup = newStore()
			ctx = context.Background()
			base = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		})

		AfterEach(func() {
			cleanup()
		})

		It("appends and reads back an entry", func() {
			wave := 2
			err := log.Append(ctx, store.Entry{
				Timestamp:     base,
				Command:       "prompt",
				Goals:         "summarise the README",
				ReturnFormat:  "markdown",
				Warnings:      "no speculation",
				Model:         "gpt-4o",
				Provider:      "openai",
				Output:        "hello",
				RecursionWave: &wave,
			})
			Expect(err).NotTo(HaveOccurred())

			entries, err := log.Recent(ctx, 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(entries).To(HaveLen(1))

			e := entries[0]
			Expect(e.ID).NotTo(BeEmpty())
			Expect(e.Timestamp.Equal(base)).To(BeTrue())
			Expect(e.Goals).To(Equal("summarise the README"))
			Expect(e.ReturnFormat).To(Equal("markdown"))
			Expect(e.Model).To(Equal("gpt-4o"))
			Expect(e.OutputLength).To(Equal(5))
			Expect(e.RecursionWave).NotTo(BeNil())
			Expect(*e.RecursionWave).To(Equal(2))
		})

		It("leaves the recursion wave empty outside a recursion session", func() {
			Expect(log.Append(ctx, store.Entry{Timestamp: base, Goals: "g"})).To(Succeed())
			entries, err := log.Recent(ctx, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(entries[0].RecursionWave).To(BeNil())
		})

		It("returns the newest entries first and honours the limit", func() {
			for i, g := range []string{"first", "second", "third"} {
				Expect(log.Append(ctx, store.Entry{
					Timestamp: base.Add(time.Duration(i) * time.Minute),
					Goals:     g,
				})).To(Succeed())
			}

			entries, err := log.Recent(ctx, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(entries).To(HaveLen(2))
			Expect(entries[0].Goals).To(Equal("third"))
			Expect(entries[1].Goals).To(Equal("second"))

			all, err := log.Recent(ctx, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(all).To(HaveLen(3))
		})

		It("returns an empty slice for an empty log", func() {
			entries, err := log.Recent(ctx, 5)
			Expect(err).NotTo(HaveOccurred())
			Expect(entries).To(BeEmpty())
		})
	}

	Context("Memory backend", func() {
		runSessionLogTests(func() (store.Store, func()) {
			return store.NewMemoryStore(), func() {}
		})
	})

	Context("JSONL backend", func() {
		runSessionLogTests(func() (store.Store, func()) {
			path := filepath.Join(GinkgoT().TempDir(), "logs", "sessions.jsonl")
			s, err := store.Open("jsonl", path)
			Expect(err).NotTo(HaveOccurred())
			return s, func() { s.Close() }
		})
	})

	Context("SQLite backend", func() {
		runSessionLogTests(func() (store.Store, func()) {
			dir, err := os.MkdirTemp("", "store-test-*")
			Expect(err).NotTo(HaveOccurred())

			s, err := store.Open("sqlite", filepath.Join(dir, "sessions.db"))
			Expect(err).NotTo(HaveOccurred())

			return s, func() {
				s.Close()
				os.RemoveAll(dir)
			}
		})
	})

	Context("Postgres backend", func() {
		runSessionLogTests(func() (store.Store, func()) {
			dsn := os.Getenv("OLA_TEST_POSTGRES_DSN")
			if dsn == "" {
				Skip("OLA_TEST_POSTGRES_DSN not set")
			}
			db, err := sql.Open("pgx", dsn)
			Expect(err).NotTo(HaveOccurred())
			_, err = db.Exec(`DROP TABLE IF EXISTS session_log`)
			Expect(err).NotTo(HaveOccurred())
			db.Close()

			s, err := store.NewPostgresStore(dsn)
			Expect(err).NotTo(HaveOccurred())
			return s, func() {
				s.Close()
			}
		})
	})
})

var _ = Describe("JSONL store", func() {
	It("writes one JSON object per line in the session log format", func() {
		path := filepath.Join(GinkgoT().TempDir(), "sessions.jsonl")
		s := store.NewJSONLStore(path)
		Expect(s.Append(context.Background(), store.Entry{Goals: "a", Model: "m", Output: "xyz"})).To(Succeed())
		Expect(s.Append(context.Background(), store.Entry{Goals: "b", Model: "m"})).To(Succeed())

		data, err := os.ReadFile(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(ContainSubstring(`"goals":"a"`))
		Expect(string(data)).To(ContainSubstring(`"output_length":3`))
		Expect(string(data)).NotTo(ContainSubstring("recursion_wave"))
	})

	It("skips lines that do not parse", func() {
		path := filepath.Join(GinkgoT().TempDir(), "sessions.jsonl")
		Expect(os.WriteFile(path, []byte("not json\n{\"goals\":\"ok\"}\n"), 0644)).To(Succeed())

		entries, err := store.NewJSONLStore(path).Recent(context.Background(), 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(entries).To(HaveLen(1))
		Expect(entries[0].Goals).To(Equal("ok"))
	})
})

var _ = Describe("Open", func() {
	It("rejects unknown backends", func() {
		_, err := store.Open("kafka", "x")
		Expect(err).To(MatchError(ContainSubstring("unknown session log backend")))
	})

	It("requires a DSN for postgres", func() {
		_, err := store.Open("postgres", "")
		Expect(err).To(HaveOccurred())
	})
})
