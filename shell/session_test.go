package shell

import (
	"sync"
	"sync/atomic"
	"time"

	"nandsim/debug"
	"nandsim/logging"
	"nandsim/transient"
	"nandsim/types"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// gatedSimulator 可按激励参数阻塞的仿真函数
type gatedSimulator struct {
	mu      sync.Mutex
	calls   []float64
	gates   map[float64]chan struct{}
	started chan float64
}

func newGatedSimulator() *gatedSimulator {
	return &gatedSimulator{
		gates:   map[float64]chan struct{}{},
		started: make(chan float64, 16),
	}
}

func (g *gatedSimulator) gate(stimulus float64) chan struct{} {
	g.mu.Lock()
	defer g.mu.Unlock()
	ch := make(chan struct{})
	g.gates[stimulus] = ch
	return ch
}

func (g *gatedSimulator) Calls() []float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]float64{}, g.calls...)
}

func (g *gatedSimulator) simulate(p types.Parameters) (*types.Series, error) {
	g.mu.Lock()
	g.calls = append(g.calls, p.Stimulus)
	gate := g.gates[p.Stimulus]
	g.mu.Unlock()
	g.started <- p.Stimulus
	if gate != nil {
		<-gate
	}
	return transient.Simulate(p)
}

func stepAt(ns float64) types.Parameters {
	p := types.DefaultParameters(types.StepResponse)
	p.Stimulus = ns * types.NanoSecond
	return p
}

var _ = Describe("Session", func() {
	var (
		sim     *gatedSimulator
		session *Session
	)

	BeforeEach(func() {
		sim = newGatedSimulator()
		session = NewSession(sim.simulate, logging.Discard())
	})

	AfterEach(func() {
		session.Close()
	})

	It("should own the last rendered series", func() {
		record, err := session.OnParametersChanged(stepAt(10))
		Expect(err).NotTo(HaveOccurred())
		Expect(record.Params.Stimulus).To(Equal(10 * types.NanoSecond))

		last, lastErr := session.Last()
		Expect(lastErr).NotTo(HaveOccurred())
		Expect(last).To(BeIdenticalTo(record))
		Expect(session.Published()).To(Equal(uint64(1)))
	})

	It("should keep the last good series on invalid parameters", func() {
		good, err := session.OnParametersChanged(stepAt(10))
		Expect(err).NotTo(HaveOccurred())

		bad := stepAt(20)
		bad.C = 0
		_, err = session.OnParametersChanged(bad)
		Expect(err).To(MatchError(types.ErrInvalidParameter))

		last, lastErr := session.Last()
		Expect(last).To(BeIdenticalTo(good))
		Expect(lastErr).To(MatchError(types.ErrInvalidParameter))
		Expect(session.Published()).To(Equal(uint64(2)))
	})

	It("should run one simulation at a time", func() {
		var active, peak int32
		slow := func(p types.Parameters) (*types.Series, error) {
			n := atomic.AddInt32(&active, 1)
			defer atomic.AddInt32(&active, -1)
			for {
				old := atomic.LoadInt32(&peak)
				if n <= old || atomic.CompareAndSwapInt32(&peak, old, n) {
					break
				}
			}
			time.Sleep(50 * time.Millisecond)
			return transient.Simulate(p)
		}
		serial := NewSession(slow, logging.Discard())
		defer serial.Close()

		var wg sync.WaitGroup
		for i := 1; i <= 4; i++ {
			wg.Add(1)
			go func(ns float64) {
				defer GinkgoRecover()
				defer wg.Done()
				record, err := serial.OnParametersChanged(stepAt(ns))
				if err != nil {
					Expect(err).To(MatchError(ErrSuperseded))
					return
				}
				Expect(record.Params.Stimulus).To(Equal(ns * types.NanoSecond))
			}(float64(10 * i))
		}
		wg.Wait()

		Expect(atomic.LoadInt32(&peak)).To(Equal(int32(1)))
		// 最后入队的参数不会被替换
		Expect(serial.Published()).To(Equal(uint64(4)))
	})

	It("should supersede a pending call instead of queueing it", func() {
		gate := sim.gate(10 * types.NanoSecond)

		type outcome struct {
			record *debug.Record
			err    error
		}
		call := func(ns float64) chan outcome {
			ch := make(chan outcome, 1)
			go func() {
				record, err := session.OnParametersChanged(stepAt(ns))
				ch <- outcome{record, err}
			}()
			return ch
		}
		generation := func() uint64 {
			session.mu.Lock()
			defer session.mu.Unlock()
			return session.generation
		}

		running := call(10)
		Eventually(sim.started).Should(Receive(Equal(10 * types.NanoSecond)))
		pending := call(20)
		Eventually(generation).Should(Equal(uint64(2)))
		newest := call(30)

		var dropped outcome
		Eventually(pending).Should(Receive(&dropped))
		Expect(dropped.err).To(MatchError(ErrSuperseded))
		Expect(dropped.record).To(BeNil())

		close(gate)
		var first, last outcome
		Eventually(running).Should(Receive(&first))
		Expect(first.err).NotTo(HaveOccurred())
		Eventually(newest).Should(Receive(&last))
		Expect(last.err).NotTo(HaveOccurred())

		current, _ := session.Last()
		Expect(current).To(BeIdenticalTo(last.record))
		Expect(session.Published()).To(Equal(uint64(3)))
		Expect(sim.Calls()).To(Equal([]float64{10 * types.NanoSecond, 30 * types.NanoSecond}))
	})

	It("should replace a pending submission with the newest one", func() {
		gate := sim.gate(10 * types.NanoSecond)

		var published []uint64
		var mu sync.Mutex
		cancel := session.Subscribe(func(res Result) {
			mu.Lock()
			defer mu.Unlock()
			published = append(published, res.Generation)
		})
		defer cancel()

		first, err := session.Submit(stepAt(10))
		Expect(err).NotTo(HaveOccurred())
		Eventually(sim.started).Should(Receive(Equal(10 * types.NanoSecond)))

		_, err = session.Submit(stepAt(20))
		Expect(err).NotTo(HaveOccurred())
		latest, err := session.Submit(stepAt(40))
		Expect(err).NotTo(HaveOccurred())
		close(gate)

		Eventually(session.Published).Should(Equal(latest))
		last, err := session.Last()
		Expect(err).NotTo(HaveOccurred())
		Expect(last.Params.Stimulus).To(Equal(40 * types.NanoSecond))

		Expect(sim.Calls()).To(Equal([]float64{10 * types.NanoSecond, 40 * types.NanoSecond}))
		mu.Lock()
		defer mu.Unlock()
		Expect(published).To(Equal([]uint64{first, latest}))
	})

	It("should stop notifying cancelled subscribers", func() {
		var count int32
		cancel := session.Subscribe(func(Result) { atomic.AddInt32(&count, 1) })
		_, err := session.OnParametersChanged(stepAt(10))
		Expect(err).NotTo(HaveOccurred())
		cancel()
		_, err = session.OnParametersChanged(stepAt(20))
		Expect(err).NotTo(HaveOccurred())
		Expect(atomic.LoadInt32(&count)).To(Equal(int32(1)))
	})

	It("should release waiters and reject work once closed", func() {
		gate := sim.gate(10 * types.NanoSecond)
		go func() { _, _ = session.OnParametersChanged(stepAt(10)) }()
		Eventually(sim.started).Should(Receive(Equal(10 * types.NanoSecond)))

		pending := make(chan error, 1)
		go func() {
			_, err := session.OnParametersChanged(stepAt(20))
			pending <- err
		}()
		Eventually(func() uint64 {
			session.mu.Lock()
			defer session.mu.Unlock()
			return session.generation
		}).Should(Equal(uint64(2)))

		closed := make(chan struct{})
		go func() {
			session.Close()
			close(closed)
		}()
		Eventually(pending).Should(Receive(MatchError(ErrClosed)))

		close(gate)
		Eventually(closed).Should(BeClosed())
		_, err := session.OnParametersChanged(stepAt(30))
		Expect(err).To(MatchError(ErrClosed))
		_, err = session.Submit(stepAt(30))
		Expect(err).To(MatchError(ErrClosed))
	})

	It("should close more than once", func() {
		session.Close()
		session.Close()
	})
})
