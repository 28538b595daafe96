package wave_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"ola/wave"
)

// fakeSpawner records spawns and writes one line of "child output" per wave.
type fakeSpawner struct {
	codes    map[int]int
	failOn   int
	stdout   *bytes.Buffer
	spawned  []int
	totals   []int
	received []wave.Invocation
}

func (f *fakeSpawner) Spawn(ctx context.Context, i, total int, inv wave.Invocation) (int, error) {
	if f.failOn == i {
		return -1, errors.New("exec format error")
	}
	f.spawned = append(f.spawned, i)
	f.totals = append(f.totals, total)
	f.received = append(f.received, inv)
	fmt.Fprintf(f.stdout, "answer from wave %d\n", i)
	return f.codes[i], nil
}

func statusLines(buf *bytes.Buffer) []string {
	trimmed := strings.TrimSpace(buf.String())
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "\n")
}

var _ = Describe("Controller", func() {
	var (
		spawner *fakeSpawner
		status  *bytes.Buffer
		stdout  *bytes.Buffer
		ctrl    *wave.Controller
		inv     wave.Invocation
	)

	BeforeEach(func() {
		status = &bytes.Buffer{}
		stdout = &bytes.Buffer{}
		spawner = &fakeSpawner{codes: map[int]int{}, stdout: stdout}
		ctrl = &wave.Controller{Spawner: spawner, Status: status}
		inv = wave.Invocation{Args: []string{"prompt", "-g", "write a haiku", "-r", "3"}}
	})

	It("runs every wave in order when all children succeed", func() {
		session, err := ctrl.Run(context.Background(), inv, 3)
		Expect(err).NotTo(HaveOccurred())

		Expect(spawner.spawned).To(Equal([]int{1, 2, 3}))
		Expect(spawner.totals).To(Equal([]int{3, 3, 3}))
		Expect(session.Total).To(Equal(3))
		Expect(session.Waves).To(HaveLen(3))
		for _, w := range session.Waves {
			Expect(w.ExitCode).To(Equal(0))
		}

		lines := statusLines(status)
		Expect(lines).To(HaveLen(3))
		Expect(lines[0]).To(ContainSubstring("wave 1 of 3"))
		Expect(lines[1]).To(ContainSubstring("wave 2 of 3"))
		Expect(lines[2]).To(ContainSubstring("wave 3 of 3"))
	})

	It("passes the same invocation to every wave", func() {
		inv.Stdin = []byte("piped context")
		_, err := ctrl.Run(context.Background(), inv, 2)
		Expect(err).NotTo(HaveOccurred())
		Expect(spawner.received).To(HaveLen(2))
		for _, got := range spawner.received {
			Expect(got.Args).To(Equal(inv.Args))
			Expect(got.Stdin).To(Equal([]byte("piped context")))
		}
	})

	It("keeps status lines out of the data stream", func() {
		_, err := ctrl.Run(context.Background(), inv, 3)
		Expect(err).NotTo(HaveOccurred())
		Expect(stdout.String()).To(Equal("answer from wave 1\nanswer from wave 2\nanswer from wave 3\n"))
		Expect(stdout.String()).NotTo(ContainSubstring("of 3"))
	})

	It("accepts a single wave", func() {
		_, err := ctrl.Run(context.Background(), inv, 1)
		Expect(err).NotTo(HaveOccurred())
		Expect(spawner.spawned).To(Equal([]int{1}))
		Expect(statusLines(status)).To(HaveLen(1))
	})

	It("stops at the first failing wave and returns its exit code", func() {
		spawner.codes[2] = 2

		session, err := ctrl.Run(context.Background(), inv, 5)
		Expect(err).To(HaveOccurred())

		var failed *wave.ChildFailedError
		Expect(errors.As(err, &failed)).To(BeTrue())
		Expect(failed.Wave).To(Equal(2))
		Expect(failed.ExitCode()).To(Equal(2))

		Expect(spawner.spawned).To(Equal([]int{1, 2}))
		Expect(session.Waves).To(HaveLen(2))
		Expect(session.Waves[1].ExitCode).To(Equal(2))

		lines := statusLines(status)
		Expect(lines).To(HaveLen(2))
		Expect(lines[0]).To(ContainSubstring("wave 1 of 5"))
		Expect(lines[1]).To(ContainSubstring("wave 2 of 5"))
	})

	It("reports a spawn failure distinctly", func() {
		spawner.failOn = 1

		_, err := ctrl.Run(context.Background(), inv, 3)
		var spawnErr *wave.SpawnError
		Expect(errors.As(err, &spawnErr)).To(BeTrue())
		Expect(spawnErr.Wave).To(Equal(1))
		Expect(spawnErr.ExitCode()).To(Equal(1))
		Expect(errors.Is(err, wave.ErrInvalidWaveCount)).To(BeFalse())
		Expect(spawner.spawned).To(BeEmpty())
		Expect(statusLines(status)).To(HaveLen(1))
	})

	DescribeTable("rejects out-of-range wave counts before spawning",
		func(n int) {
			session, err := ctrl.Run(context.Background(), inv, n)
			Expect(session).To(BeNil())
			Expect(errors.Is(err, wave.ErrInvalidWaveCount)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("between 1 and 10"))

			var countErr *wave.CountError
			Expect(errors.As(err, &countErr)).To(BeTrue())
			Expect(countErr.ExitCode()).To(Equal(2))

			Expect(spawner.spawned).To(BeEmpty())
			Expect(status.Len()).To(BeZero())
		},
		Entry("eleven", 11),
		Entry("zero", 0),
		Entry("negative", -3),
	)

	It("writes plain status lines to a non-terminal writer while stdout is a terminal", func() {
		setStdoutColour(true)

		_, err := ctrl.Run(context.Background(), inv, 2)
		Expect(err).NotTo(HaveOccurred())
		Expect(status.String()).To(Equal("wave 1 of 2\nwave 2 of 2\n"))
	})

	It("colours status lines written to a terminal while stdout is redirected", func() {
		term := &ttyBuffer{fd: openTerminal().Fd()}
		setStdoutColour(false)
		ctrl.Status = term

		_, err := ctrl.Run(context.Background(), inv, 2)
		Expect(err).NotTo(HaveOccurred())
		Expect(term.String()).To(Equal("\x1b[34mwave 1 of 2\x1b[0m\n\x1b[36mwave 2 of 2\x1b[0m\n"))
	})

	It("stops issuing waves once the context is cancelled", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := ctrl.Run(ctx, inv, 3)
		Expect(err).To(MatchError(context.Canceled))
		Expect(spawner.spawned).To(BeEmpty())
	})
})

var _ = DescribeTable("ChildFailedError exit code",
	func(code, want int) {
		err := &wave.ChildFailedError{Wave: 1, Code: code}
		Expect(err.ExitCode()).To(Equal(want))
	},
	Entry("passes a child's status through", 3, 3),
	Entry("maps a signal-killed child to 1", -1, 1),
)

var _ = Describe("FromEnv", func() {
	lookup := func(env map[string]string) func(string) (string, bool) {
		return func(k string) (string, bool) {
			v, ok := env[k]
			return v, ok
		}
	}

	It("returns 0 outside a recursion session", func() {
		Expect(wave.FromEnv(lookup(nil))).To(Equal(0))
	})

	It("reads the wave index", func() {
		Expect(wave.FromEnv(lookup(map[string]string{wave.EnvWave: "4"}))).To(Equal(4))
		Expect(wave.TotalFromEnv(lookup(map[string]string{wave.EnvTotal: "7"}))).To(Equal(7))
	})

	It("ignores malformed values", func() {
		Expect(wave.FromEnv(lookup(map[string]string{wave.EnvWave: "three"}))).To(Equal(0))
		Expect(wave.FromEnv(lookup(map[string]string{wave.EnvWave: "42"}))).To(Equal(0))
		Expect(wave.TotalFromEnv(lookup(map[string]string{wave.EnvTotal: "0"}))).To(Equal(0))
	})
})
