package shell

import (
	"log/slog"
	"net"
	"net/http"
	"syscall"

	"nandsim/debug"
	"nandsim/types"
	"nandsim/utils"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
)

// Server 参数滑块界面的 HTTP 服务
// 所有仿真都经过会话，界面状态始终归会话所有。滑块页面通过
// /api/submit 异步提交参数，并从 /api/events 接收发布的结果
type Server struct {
	session *Session
	plot    *debug.Plot
	log     *slog.Logger
	router  *mux.Router
}

// NewServer 创建服务并注册路由
func NewServer(session *Session, plot *debug.Plot, log *slog.Logger) *Server {
	srv := &Server{session: session, plot: plot, log: log}
	r := mux.NewRouter()
	r.HandleFunc("/", srv.index).Methods(http.MethodGet)
	r.HandleFunc("/api/simulate", srv.simulateJSON).Methods(http.MethodGet)
	r.HandleFunc("/api/series.csv", srv.simulateCSV).Methods(http.MethodGet)
	r.HandleFunc("/api/submit", srv.submit).Methods(http.MethodPost)
	r.HandleFunc("/api/events", srv.events).Methods(http.MethodGet)
	r.HandleFunc("/api/last", srv.lastJSON).Methods(http.MethodGet)
	r.HandleFunc("/api/last.csv", srv.lastCSV).Methods(http.MethodGet)
	r.HandleFunc("/last.{format:png|svg}", srv.lastImage).Methods(http.MethodGet)
	r.HandleFunc("/last/chart", srv.lastChart).Methods(http.MethodGet)
	r.HandleFunc("/api/sliders/{variant}", srv.sliders).Methods(http.MethodGet)
	r.HandleFunc("/plot.{format:png|svg}", srv.plotImage).Methods(http.MethodGet)
	r.HandleFunc("/chart", srv.chart).Methods(http.MethodGet)
	srv.router = r
	return srv
}

// ServeHTTP 实现 http.Handler
func (srv *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	srv.router.ServeHTTP(w, r)
}

// Serve 在 listener 上提供服务直到出错
func (srv *Server) Serve(listener net.Listener) error {
	srv.log.Info("serving", "url", "http://"+listener.Addr().String()+"/")
	return http.Serve(listener, srv)
}

// ParseParameters 从查询参数解析仿真参数，缺省项取变体初始值
func ParseParameters(r *http.Request) (types.Parameters, error) {
	q := r.URL.Query()
	variant := types.StepResponse
	if v := q.Get("variant"); v != "" {
		var err error
		if variant, err = types.ParseVariant(v); err != nil {
			return types.Parameters{}, err
		}
	}
	def := types.DefaultParameters(variant)
	list := utils.ParamList{q.Get("s"), q.Get("c"), q.Get("stimulus")}
	p := types.Parameters{Variant: variant}
	var err error
	if p.S, err = list.Float64(0, def.S); err != nil {
		return p, errors.Wrap(err, "s")
	}
	if p.C, err = list.Float64(1, def.C); err != nil {
		return p, errors.Wrap(err, "c")
	}
	if p.Stimulus, err = list.Float64(2, def.Stimulus); err != nil {
		return p, errors.Wrap(err, "stimulus")
	}
	return p, nil
}

// record 解析参数并仿真，失败时写出错误响应并返回 nil
func (srv *Server) record(w http.ResponseWriter, r *http.Request) *debug.Record {
	params, err := ParseParameters(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil
	}
	record, err := srv.session.OnParametersChanged(params)
	switch {
	case errors.Is(err, types.ErrInvalidParameter):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return nil
	case errors.Is(err, ErrSuperseded):
		http.Error(w, err.Error(), http.StatusConflict)
		return nil
	case errors.Is(err, ErrClosed):
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return nil
	case err != nil:
		srv.log.Error("simulate", "err", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return nil
	}
	return record
}

func (srv *Server) simulateJSON(w http.ResponseWriter, r *http.Request) {
	if record := srv.record(w, r); record != nil {
		w.Header().Set("Content-Type", "application/json")
		srv.check(record.Render(w))
	}
}

func (srv *Server) simulateCSV(w http.ResponseWriter, r *http.Request) {
	if record := srv.record(w, r); record != nil {
		srv.writeCSV(w, record)
	}
}

// submit 异步提交参数，结果经 /api/events 推送
func (srv *Server) submit(w http.ResponseWriter, r *http.Request) {
	params, err := ParseParameters(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := params.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	gen, err := srv.session.Submit(params)
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	srv.check(writeJSON(w, map[string]uint64{"generation": gen}))
}

// events 以 server-sent events 推送发布的结果
// 客户端来不及接收时只保留最新的一条
func (srv *Server) events(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	updates := make(chan Result, 1)
	cancel := srv.session.Subscribe(func(res Result) {
		select {
		case <-updates:
		default:
		}
		updates <- res
	})
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()
	for {
		select {
		case <-r.Context().Done():
			return
		case <-srv.session.Done():
			return
		case res := <-updates:
			if err := writeEvent(w, res); err != nil {
				srv.check(err)
				return
			}
			flusher.Flush()
		}
	}
}

// last 最近一次发布的成功结果，没有时写出 404 并返回 nil
func (srv *Server) last(w http.ResponseWriter) *debug.Record {
	record, err := srv.session.Last()
	if record == nil {
		msg := "no simulation yet"
		if err != nil {
			msg = err.Error()
		}
		http.Error(w, msg, http.StatusNotFound)
	}
	return record
}

func (srv *Server) lastJSON(w http.ResponseWriter, _ *http.Request) {
	if record := srv.last(w); record != nil {
		w.Header().Set("Content-Type", "application/json")
		srv.check(record.Render(w))
	}
}

func (srv *Server) lastCSV(w http.ResponseWriter, _ *http.Request) {
	if record := srv.last(w); record != nil {
		srv.writeCSV(w, record)
	}
}

func (srv *Server) lastImage(w http.ResponseWriter, r *http.Request) {
	format, err := debug.ParseFormat(mux.Vars(r)["format"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if record := srv.last(w); record != nil {
		srv.writeImage(w, record, format)
	}
}

func (srv *Server) lastChart(w http.ResponseWriter, r *http.Request) {
	if record := srv.last(w); record != nil {
		debug.NewCharts(record).Handler(w, r)
	}
}

func (srv *Server) plotImage(w http.ResponseWriter, r *http.Request) {
	format, err := debug.ParseFormat(mux.Vars(r)["format"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if record := srv.record(w, r); record != nil {
		srv.writeImage(w, record, format)
	}
}

// writeImage 写出曲线图
func (srv *Server) writeImage(w http.ResponseWriter, record *debug.Record, format debug.Format) {
	if format == debug.FormatSVG {
		w.Header().Set("Content-Type", "image/svg+xml")
	} else {
		w.Header().Set("Content-Type", "image/png")
	}
	srv.check(srv.plot.Render(record, format, w))
}

// writeCSV 写出 CSV 附件
func (srv *Server) writeCSV(w http.ResponseWriter, record *debug.Record) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="nandsim-`+record.ID+`.csv"`)
	srv.check(record.RenderCSV(w))
}

func (srv *Server) chart(w http.ResponseWriter, r *http.Request) {
	if record := srv.record(w, r); record != nil {
		debug.NewCharts(record).Handler(w, r)
	}
}

func (srv *Server) sliders(w http.ResponseWriter, r *http.Request) {
	variant, err := types.ParseVariant(mux.Vars(r)["variant"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	srv.check(writeJSON(w, types.Sliders(variant)))
}

// indexData 页面数据
type indexData struct {
	Variant  string
	Variants []string
	Sliders  []sliderValue
}

// sliderValue 滑块及其初始显示值
type sliderValue struct {
	types.Slider
	Value float64
}

func (srv *Server) index(w http.ResponseWriter, r *http.Request) {
	params, err := ParseParameters(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	values := []float64{params.S, params.C, params.Stimulus}
	data := indexData{
		Variant:  params.Variant.String(),
		Variants: []string{types.StepResponse.String(), types.SteadyInput.String()},
	}
	for i, sl := range types.Sliders(params.Variant) {
		data.Sliders = append(data.Sliders, sliderValue{Slider: sl, Value: values[i] / sl.Scale})
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	srv.check(indexTemplate.Execute(w, data))
}

// check 记录写响应时的错误，客户端断开不记录
func (srv *Server) check(err error) {
	if err == nil || errors.Is(err, syscall.EPIPE) || errors.Is(err, syscall.ECONNRESET) {
		return
	}
	srv.log.Error("write response", "err", err)
}
