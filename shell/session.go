// Package shell 交互界面的状态与 HTTP 服务
package shell

import (
	"log/slog"
	"sync"
	"time"

	"nandsim/debug"
	"nandsim/types"

	"github.com/pkg/errors"
)

var (
	// ErrSuperseded 等待中的参数被更新的参数替换，未执行仿真
	ErrSuperseded = errors.New("superseded by newer parameters")
	// ErrClosed 会话已关闭
	ErrClosed = errors.New("session closed")
)

// Simulator 仿真函数
type Simulator func(types.Parameters) (*types.Series, error)

// Result 一次参数变更的处理结果
type Result struct {
	Generation uint64           // 参数变更序号
	Params     types.Parameters // 本次参数
	Record     *debug.Record    // 成功时的记录
	Err        error            // 失败原因
}

// job 待处理的参数变更
type job struct {
	generation uint64
	params     types.Parameters
	reply      chan Result // 同步调用等待结果，异步提交为 nil
}

// Session 交互界面状态
// 持有最近一次发布的仿真结果。所有仿真由同一个处理协程按序执行，
// 任意时刻最多一次仿真在执行；等待中的旧参数被新参数直接替换，
// 发布的序号严格递增
type Session struct {
	simulate Simulator
	log      *slog.Logger

	mu          sync.Mutex
	closed      bool
	generation  uint64                  // 最近一次参数变更序号
	published   uint64                  // 最近一次发布的序号
	last        *debug.Record           // 最近一次发布的成功结果
	lastErr     error                   // 最近一次发布的错误
	subscribers map[uint64]func(Result) // 发布回调
	nextSub     uint64

	mailbox chan job
	done    chan struct{}
	once    sync.Once
	wg      sync.WaitGroup
}

// NewSession 创建会话并启动处理协程
func NewSession(simulate Simulator, log *slog.Logger) *Session {
	s := &Session{
		simulate:    simulate,
		log:         log,
		subscribers: map[uint64]func(Result){},
		mailbox:     make(chan job, 1),
		done:        make(chan struct{}),
	}
	s.wg.Add(1)
	go s.loop()
	return s
}

// Subscribe 注册发布回调，返回取消函数
// 回调在会话锁内按发布顺序调用，不能阻塞，也不能再调用会话方法
func (s *Session) Subscribe(fn func(Result)) (cancel func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subscribers[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subscribers, id)
	}
}

// enqueue 分配序号并放入信箱，替换尚未开始的旧参数
func (s *Session) enqueue(params types.Parameters, reply chan Result) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, ErrClosed
	}
	s.generation++
	gen := s.generation
	select {
	case stale := <-s.mailbox:
		s.log.Debug("superseded", "generation", stale.generation, "by", gen)
		if stale.reply != nil {
			stale.reply <- Result{Generation: stale.generation, Params: stale.params, Err: ErrSuperseded}
		}
	default:
	}
	s.mailbox <- job{generation: gen, params: params, reply: reply}
	return gen, nil
}

// OnParametersChanged 处理一次参数变更并等待结果
// 等待期间被更新的参数替换时返回 ErrSuperseded
func (s *Session) OnParametersChanged(params types.Parameters) (*debug.Record, error) {
	reply := make(chan Result, 1)
	if _, err := s.enqueue(params, reply); err != nil {
		return nil, err
	}
	select {
	case res := <-reply:
		return res.Record, res.Err
	case <-s.done:
		select {
		case res := <-reply:
			return res.Record, res.Err
		default:
			return nil, ErrClosed
		}
	}
}

// Submit 异步提交参数变更，返回其序号
// 结果通过 Subscribe 的回调和 Last 获得
func (s *Session) Submit(params types.Parameters) (uint64, error) {
	return s.enqueue(params, nil)
}

// Last 最近一次发布的成功结果及其后的错误
func (s *Session) Last() (*debug.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last, s.lastErr
}

// Published 最近一次发布的序号
func (s *Session) Published() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.published
}

// Done 会话关闭时关闭
func (s *Session) Done() <-chan struct{} { return s.done }

// Close 停止处理协程，可重复调用
func (s *Session) Close() {
	s.once.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()
		close(s.done)
	})
	s.wg.Wait()
}

func (s *Session) loop() {
	defer s.wg.Done()
	for {
		select {
		case <-s.done:
			return
		case j := <-s.mailbox:
			res := s.run(j)
			s.publish(res)
			if j.reply != nil {
				j.reply <- res
			}
		}
	}
}

// run 执行仿真
func (s *Session) run(j job) Result {
	start := time.Now()
	series, err := s.simulate(j.params)
	res := Result{Generation: j.generation, Params: j.params, Err: err}
	if err != nil {
		s.log.Warn("simulate failed", "generation", j.generation, "err", err)
		return res
	}
	res.Record = debug.NewRecord(series)
	s.log.Debug("simulated", "generation", j.generation, "id", res.Record.ID,
		"variant", j.params.Variant, "s", j.params.S, "c", j.params.C, "stimulus", j.params.Stimulus,
		"elapsed", time.Since(start))
	return res
}

// publish 发布结果，不晚于已发布序号的结果被丢弃
func (s *Session) publish(res Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if res.Generation <= s.published {
		s.log.Debug("stale result dropped", "generation", res.Generation, "published", s.published)
		return
	}
	s.published = res.Generation
	if res.Err != nil {
		s.lastErr = res.Err
	} else {
		s.last, s.lastErr = res.Record, nil
	}
	for _, fn := range s.subscribers {
		fn(res)
	}
}
