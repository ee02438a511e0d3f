package shell

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"syscall"

	"nandsim/debug"
	"nandsim/logging"
	"nandsim/transient"
	"nandsim/types"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/pkg/errors"
)

var _ = Describe("Server", func() {
	var (
		session *Session
		srv     *Server
	)

	BeforeEach(func() {
		session = NewSession(transient.Simulate, logging.Discard())
		srv = NewServer(session, debug.NewPlot(6, 4), logging.Discard())
	})

	AfterEach(func() {
		session.Close()
	})

	get := func(url string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, url, nil))
		return rec
	}

	It("should parse engineering notation with variant defaults", func() {
		req := httptest.NewRequest(http.MethodGet, "/api/simulate?variant=steady&c=100p", nil)
		p, err := ParseParameters(req)
		Expect(err).NotTo(HaveOccurred())
		Expect(p.Variant).To(Equal(types.SteadyInput))
		Expect(p.C).To(BeNumerically("~", 100e-12, 1e-24))
		Expect(p.S).To(Equal(types.DefaultParameters(types.SteadyInput).S))
		Expect(p.Stimulus).To(Equal(types.SupplyVoltage))
	})

	It("should simulate and remember the record", func() {
		rec := get("/api/simulate?s=1.5m&c=50p&stimulus=15n")
		Expect(rec.Code).To(Equal(http.StatusOK))

		var record debug.Record
		Expect(json.Unmarshal(rec.Body.Bytes(), &record)).To(Succeed())
		Expect(record.Output).To(HaveLen(3000))
		Expect(record.Output[0]).To(Equal(5.0))
		Expect(record.Params.Stimulus).To(BeNumerically("~", 15e-9, 1e-20))

		last := get("/api/last")
		Expect(last.Code).To(Equal(http.StatusOK))
		Expect(last.Body.String()).To(ContainSubstring(record.ID))
	})

	It("should report 404 before any simulation", func() {
		Expect(get("/api/last").Code).To(Equal(http.StatusNotFound))
	})

	It("should reject malformed and invalid parameters", func() {
		Expect(get("/api/simulate?s=fast").Code).To(Equal(http.StatusBadRequest))
		Expect(get("/api/simulate?variant=ramp").Code).To(Equal(http.StatusBadRequest))
		Expect(get("/api/simulate?c=0").Code).To(Equal(http.StatusUnprocessableEntity))
		Expect(get("/api/simulate?s=-1m").Code).To(Equal(http.StatusUnprocessableEntity))
	})

	It("should export csv", func() {
		rec := get("/api/series.csv?variant=steady")
		Expect(rec.Code).To(Equal(http.StatusOK))
		rows, err := csv.NewReader(rec.Body).ReadAll()
		Expect(err).NotTo(HaveOccurred())
		Expect(rows).To(HaveLen(2001))
		Expect(rows[1]).To(Equal([]string{"0", "5", "5", "2.5", "2.5"}))
	})

	It("should render images", func() {
		png := get("/plot.png")
		Expect(png.Code).To(Equal(http.StatusOK))
		Expect(png.Header().Get("Content-Type")).To(Equal("image/png"))
		Expect(bytes.HasPrefix(png.Body.Bytes(), []byte("\x89PNG"))).To(BeTrue())

		svg := get("/plot.svg?variant=steady&stimulus=3")
		Expect(svg.Code).To(Equal(http.StatusOK))
		Expect(svg.Body.String()).To(ContainSubstring("<svg"))

		Expect(get("/plot.gif").Code).To(Equal(http.StatusNotFound))
	})

	It("should render the chart page", func() {
		rec := get("/chart?stimulus=20n")
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring("output U(Cn)"))
	})

	It("should render slider page for each variant", func() {
		step := get("/")
		Expect(step.Code).To(Equal(http.StatusOK))
		Expect(step.Body.String()).To(ContainSubstring("Switch time, ns"))
		Expect(step.Body.String()).To(ContainSubstring(`data-suffix="n"`))

		steady := get("/?variant=steady")
		Expect(steady.Code).To(Equal(http.StatusOK))
		Expect(steady.Body.String()).To(ContainSubstring("Input voltage, V"))
	})

	It("should list sliders", func() {
		rec := get("/api/sliders/steady")
		Expect(rec.Code).To(Equal(http.StatusOK))
		var sliders []types.Slider
		Expect(json.Unmarshal(rec.Body.Bytes(), &sliders)).To(Succeed())
		Expect(sliders).To(HaveLen(3))
		Expect(sliders[2].Max).To(Equal(types.SupplyVoltage))

		Expect(get("/api/sliders/ramp").Code).To(Equal(http.StatusNotFound))
	})

	It("should serve the last published record without simulating", func() {
		Expect(get("/last.png").Code).To(Equal(http.StatusNotFound))
		Expect(get("/api/last.csv").Code).To(Equal(http.StatusNotFound))

		Expect(get("/api/simulate?variant=steady&stimulus=3").Code).To(Equal(http.StatusOK))
		published := session.Published()

		svg := get("/last.svg")
		Expect(svg.Code).To(Equal(http.StatusOK))
		Expect(svg.Header().Get("Content-Type")).To(Equal("image/svg+xml"))
		rows, err := csv.NewReader(get("/api/last.csv").Body).ReadAll()
		Expect(err).NotTo(HaveOccurred())
		Expect(rows).To(HaveLen(2001))
		Expect(rows[1][1]).To(Equal("3"))
		Expect(get("/last/chart").Body.String()).To(ContainSubstring("output U(Cn)"))

		Expect(session.Published()).To(Equal(published))
	})

	It("should accept submissions and push results as events", func() {
		ts := httptest.NewServer(srv)
		defer ts.Close()

		resp, err := http.Get(ts.URL + "/api/events")
		Expect(err).NotTo(HaveOccurred())
		defer resp.Body.Close()
		Expect(resp.Header.Get("Content-Type")).To(Equal("text/event-stream"))

		events := make(chan map[string]any, 4)
		go func() {
			defer GinkgoRecover()
			scanner := bufio.NewScanner(resp.Body)
			for scanner.Scan() {
				if data, ok := strings.CutPrefix(scanner.Text(), "data: "); ok {
					var ev map[string]any
					Expect(json.Unmarshal([]byte(data), &ev)).To(Succeed())
					events <- ev
				}
			}
		}()

		sub, err := http.Post(ts.URL+"/api/submit?variant=steady&stimulus=4", "", nil)
		Expect(err).NotTo(HaveOccurred())
		sub.Body.Close()
		Expect(sub.StatusCode).To(Equal(http.StatusAccepted))

		var ev map[string]any
		Eventually(events).Should(Receive(&ev))
		Expect(ev["generation"]).To(BeNumerically("==", 1))
		Expect(ev["params"].(map[string]any)["stimulus"]).To(BeNumerically("==", 4))
		Expect(ev).To(HaveKey("summary"))
		Expect(ev).NotTo(HaveKey("error"))

		last, _ := session.Last()
		Expect(last).NotTo(BeNil())
		Expect(ev["id"]).To(Equal(last.ID))
	})

	It("should reject invalid submissions", func() {
		post := func(url string) int {
			rec := httptest.NewRecorder()
			srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, url, nil))
			return rec.Code
		}
		Expect(post("/api/submit?c=tiny")).To(Equal(http.StatusBadRequest))
		Expect(post("/api/submit?c=0")).To(Equal(http.StatusUnprocessableEntity))
		Expect(get("/api/submit").Code).To(Equal(http.StatusMethodNotAllowed))
		Expect(session.Published()).To(BeZero())
	})

	It("should not log client disconnects", func() {
		var buf bytes.Buffer
		quiet := NewServer(session, debug.NewPlot(6, 4), logging.NewLogger("info", &buf))

		quiet.check(nil)
		quiet.check(&net.OpError{Op: "write", Net: "tcp", Err: os.NewSyscallError("write", syscall.EPIPE)})
		quiet.check(errors.Wrap(syscall.ECONNRESET, "write csv row 7"))
		Expect(buf.String()).To(BeEmpty())

		quiet.check(errors.New("plot writer svg: boom"))
		Expect(buf.String()).To(ContainSubstring("boom"))
	})
})
