package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/okian/salaryexplorer/internal/adapters/export"
	"github.com/okian/salaryexplorer/internal/adapters/http/api"
	service "github.com/okian/salaryexplorer/internal/app"
	"github.com/okian/salaryexplorer/internal/domain/dataset"
	"github.com/okian/salaryexplorer/internal/domain/model"
	"github.com/okian/salaryexplorer/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

// mockDependencies records the last call and returns canned results.
type mockDependencies struct {
	ready bool

	dashboardErr error
	predictErr   error
	compareErr   error
	chartErr     error

	lastSpec   dataset.FilterSpec
	lastInputs dataset.ExactFilter
	lastTitles []string
	lastChart  string
}

func (m *mockDependencies) Ready() bool { return m.ready }

func (m *mockDependencies) Options(context.Context) (service.OptionsView, error) {
	return service.OptionsView{Years: []int{2022, 2023}, JobTitles: []string{"Data Scientist"}}, nil
}

func (m *mockDependencies) Dashboard(_ context.Context, spec dataset.FilterSpec) (service.DashboardView, error) {
	m.lastSpec = spec
	if m.dashboardErr != nil {
		return service.DashboardView{}, m.dashboardErr
	}
	return service.DashboardView{Filters: spec, KPIs: service.KPIs{TotalRecords: 3}}, nil
}

func (m *mockDependencies) Predict(_ context.Context, inputs dataset.ExactFilter) (service.PredictionView, error) {
	m.lastInputs = inputs
	if m.predictErr != nil {
		return service.PredictionView{}, m.predictErr
	}
	return service.PredictionView{Inputs: inputs, Estimate: 120000}, nil
}

func (m *mockDependencies) Compare(_ context.Context, titles []string) (service.ComparisonView, error) {
	m.lastTitles = titles
	if m.compareErr != nil {
		return service.ComparisonView{}, m.compareErr
	}
	return service.ComparisonView{JobTitles: titles}, nil
}

func (m *mockDependencies) Export(_ context.Context, spec dataset.FilterSpec, format export.Format, w io.Writer) (int, error) {
	m.lastSpec = spec
	_, err := io.WriteString(w, "work_year\n2023\n")
	return 1, err
}

func (m *mockDependencies) Chart(_ context.Context, name string, spec dataset.FilterSpec, w io.Writer) error {
	m.lastChart = name
	m.lastSpec = spec
	if m.chartErr != nil {
		return m.chartErr
	}
	_, err := io.WriteString(w, "<svg></svg>")
	return err
}

type mockStatsProvider struct {
	stats map[string]interface{}
}

func (m *mockStatsProvider) GetStats() map[string]interface{} {
	return m.stats
}

func newMux(deps *mockDependencies, opts ...api.Option) *http.ServeMux {
	mux := http.NewServeMux()
	api.NewServer(deps, &mockStatsProvider{stats: map[string]interface{}{"records": 3}}, opts...).
		Register(context.Background(), mux)
	return mux
}

func serve(mux http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var r io.Reader = http.NoBody
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func decode(w *httptest.ResponseRecorder) map[string]any {
	var out map[string]any
	So(json.Unmarshal(w.Body.Bytes(), &out), ShouldBeNil)
	return out
}

const validEstimate = `{"job_title":"Data Scientist","experience_level":"SE","employment_type":"FT",` +
	`"remote_ratio":100,"company_location":"US","company_size":"M"}`

func TestServer_Register(t *testing.T) {
	Convey("Given a new API server", t, func() {
		deps := &mockDependencies{ready: true}
		mux := newMux(deps)

		Convey("Then the health endpoint serves metrics", func() {
			w := serve(mux, "GET", "/healthz", "")
			So(w.Code, ShouldEqual, http.StatusOK)
		})

		Convey("And the stats endpoint serves JSON", func() {
			w := serve(mux, "GET", "/stats", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(decode(w)["records"], ShouldEqual, float64(3))
		})

		Convey("And unknown paths are not found", func() {
			w := serve(mux, "GET", "/unknown", "")
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("And registering on a nil mux panics", func() {
			server := api.NewServer(deps, &mockStatsProvider{})
			So(func() { server.Register(context.Background(), nil) }, ShouldPanic)
		})
	})
}

func TestHealthHandler_HandleReady(t *testing.T) {
	Convey("Given the readiness endpoint", t, func() {
		deps := &mockDependencies{}
		mux := newMux(deps)

		Convey("When the dataset is not loaded", func() {
			w := serve(mux, "GET", "/readyz", "")
			So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
			So(decode(w)["ready"], ShouldEqual, false)
		})

		Convey("When the dataset is loaded", func() {
			deps.ready = true
			w := serve(mux, "GET", "/readyz", "")
			So(w.Code, ShouldEqual, http.StatusOK)
		})
	})
}

func TestDashboardHandler(t *testing.T) {
	Convey("Given the dashboard endpoint", t, func() {
		deps := &mockDependencies{ready: true}
		mux := newMux(deps)

		Convey("When filters are repeated and comma separated", func() {
			w := serve(mux, "GET", "/api/dashboard?work_year=2022,2023&job_title=Data+Scientist&job_title=Data+Engineer", "")

			Convey("Then they are merged into value sets", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.lastSpec[model.ColWorkYear], ShouldResemble, []string{"2022", "2023"})
				So(deps.lastSpec[model.ColJobTitle], ShouldResemble, []string{"Data Scientist", "Data Engineer"})
			})
		})

		Convey("When a filter names an unknown column", func() {
			w := serve(mux, "GET", "/api/dashboard?salary=1", "")

			Convey("Then it is a bad request", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(decode(w)["code"], ShouldEqual, "bad_request")
			})
		})

		Convey("When no record matches", func() {
			deps.dashboardErr = service.ErrNoMatchingRecords
			w := serve(mux, "GET", "/api/dashboard?company_location=FR", "")

			Convey("Then an empty state is returned with 200", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(decode(w)["empty"], ShouldEqual, true)
			})
		})

		Convey("When the service is not started", func() {
			deps.dashboardErr = service.ErrNotStarted
			w := serve(mux, "GET", "/api/dashboard", "")
			So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
			So(decode(w)["code"], ShouldEqual, "not_ready")
		})

		Convey("When the view fails unexpectedly", func() {
			deps.dashboardErr = errors.New("boom")
			w := serve(mux, "GET", "/api/dashboard", "")
			So(w.Code, ShouldEqual, http.StatusInternalServerError)
		})

		Convey("When listing options", func() {
			w := serve(mux, "GET", "/api/options", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(decode(w)["years"], ShouldHaveLength, 2)
		})

		Convey("When using the wrong method", func() {
			w := serve(mux, "POST", "/api/dashboard", "")
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestEstimateHandler(t *testing.T) {
	Convey("Given the estimate endpoint", t, func() {
		deps := &mockDependencies{ready: true}
		mux := newMux(deps)

		Convey("When the request is valid", func() {
			w := serve(mux, "POST", "/api/estimate", validEstimate)

			Convey("Then the inputs reach the predictor", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(decode(w)["estimate"], ShouldEqual, float64(120000))
				So(deps.lastInputs[model.ColRemoteRatio], ShouldEqual, "100")
				So(deps.lastInputs[model.ColJobTitle], ShouldEqual, "Data Scientist")
			})
		})

		Convey("When the remote ratio is zero", func() {
			body := strings.Replace(validEstimate, `"remote_ratio":100`, `"remote_ratio":0`, 1)
			w := serve(mux, "POST", "/api/estimate", body)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(deps.lastInputs[model.ColRemoteRatio], ShouldEqual, "0")
		})

		Convey("When fields are missing", func() {
			w := serve(mux, "POST", "/api/estimate", `{"job_title":"Data Scientist"}`)

			Convey("Then each is reported by its JSON name", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				msg := decode(w)["message"].(string)
				So(msg, ShouldContainSubstring, "missing experience_level")
				So(msg, ShouldContainSubstring, "missing remote_ratio")
			})
		})

		Convey("When a code is outside its table", func() {
			body := strings.Replace(validEstimate, `"SE"`, `"XX"`, 1)
			w := serve(mux, "POST", "/api/estimate", body)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(decode(w)["message"], ShouldContainSubstring, "invalid experience_level")
		})

		Convey("When the body is not JSON", func() {
			w := serve(mux, "POST", "/api/estimate", "not json")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When no estimate can be made", func() {
			deps.predictErr = service.ErrNoEstimate
			w := serve(mux, "POST", "/api/estimate", validEstimate)
			So(w.Code, ShouldEqual, http.StatusNotFound)
			So(decode(w)["code"], ShouldEqual, "no_estimate")
		})

		Convey("When using GET", func() {
			w := serve(mux, "GET", "/api/estimate", "")
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestCompareHandler(t *testing.T) {
	Convey("Given the compare endpoint", t, func() {
		deps := &mockDependencies{ready: true}
		mux := newMux(deps)

		Convey("When titles are given", func() {
			w := serve(mux, "GET", "/api/compare?job_title=Data+Scientist,Data+Engineer", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(deps.lastTitles, ShouldResemble, []string{"Data Scientist", "Data Engineer"})
		})

		Convey("When no title is given", func() {
			w := serve(mux, "GET", "/api/compare", "")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(decode(w)["message"], ShouldContainSubstring, "no job titles selected")
		})
	})
}

func TestOutputHandlers(t *testing.T) {
	Convey("Given the export and chart endpoints", t, func() {
		deps := &mockDependencies{ready: true}
		mux := newMux(deps)

		Convey("When exporting CSV", func() {
			w := serve(mux, "GET", "/api/export.csv?experience_level=SE", "")

			Convey("Then the file is an attachment", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldEqual, "text/csv; charset=utf-8")
				So(w.Header().Get("Content-Disposition"), ShouldContainSubstring, "filtered_salaries.csv")
				So(w.Header().Get("X-Record-Count"), ShouldEqual, "1")
				So(deps.lastSpec[model.ColExperienceLevel], ShouldResemble, []string{"SE"})
			})
		})

		Convey("When exporting XLSX", func() {
			w := serve(mux, "GET", "/api/export.xlsx", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get("Content-Disposition"), ShouldContainSubstring, "filtered_salaries.xlsx")
		})

		Convey("When rendering a chart", func() {
			w := serve(mux, "GET", "/api/charts/salary-trend.svg?work_year=2023", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get("Content-Type"), ShouldEqual, "image/svg+xml")
			So(deps.lastChart, ShouldEqual, "salary-trend")
		})

		Convey("When the chart name lacks the svg suffix", func() {
			w := serve(mux, "GET", "/api/charts/salary-trend", "")
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("When the chart is unknown", func() {
			deps.chartErr = service.ErrUnknownChart
			w := serve(mux, "GET", "/api/charts/nope.svg", "")
			So(w.Code, ShouldEqual, http.StatusNotFound)
			So(decode(w)["code"], ShouldEqual, "not_found")
		})
	})
}

func TestRateLimit(t *testing.T) {
	Convey("Given a server limited to a burst of one", t, func() {
		deps := &mockDependencies{ready: true}
		mux := newMux(deps, api.WithRateLimit(0.001, 1))

		Convey("When two API requests arrive back to back", func() {
			first := serve(mux, "GET", "/api/options", "")
			second := serve(mux, "GET", "/api/options", "")

			Convey("Then the second is rejected", func() {
				So(first.Code, ShouldEqual, http.StatusOK)
				So(second.Code, ShouldEqual, http.StatusTooManyRequests)
				So(decode(second)["code"], ShouldEqual, "rate_limited")
				So(second.Header().Get("Retry-After"), ShouldEqual, "1")
			})

			Convey("And operational endpoints stay available", func() {
				So(serve(mux, "GET", "/readyz", "").Code, ShouldEqual, http.StatusOK)
				So(serve(mux, "GET", "/readyz", "").Code, ShouldEqual, http.StatusOK)
			})
		})
	})
}

func TestRequestID(t *testing.T) {
	Convey("Given the request ID middleware", t, func() {
		var seen string
		h := api.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = api.RequestIDFrom(r.Context())
		}))

		Convey("When the client sends no ID", func() {
			w := serve(h, "GET", "/", "")

			Convey("Then one is generated and echoed", func() {
				So(seen, ShouldNotBeEmpty)
				So(w.Header().Get(api.RequestIDHeader), ShouldEqual, seen)
			})
		})

		Convey("When the client sends a UUID", func() {
			req := httptest.NewRequest("GET", "/", http.NoBody)
			req.Header.Set(api.RequestIDHeader, "7c9e6679-7425-40de-944b-e07fc1f90ae7")
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			Convey("Then it is kept", func() {
				So(seen, ShouldEqual, "7c9e6679-7425-40de-944b-e07fc1f90ae7")
			})
		})

		Convey("When the client sends garbage", func() {
			req := httptest.NewRequest("GET", "/", http.NoBody)
			req.Header.Set(api.RequestIDHeader, "<script>")
			h.ServeHTTP(httptest.NewRecorder(), req)

			Convey("Then it is replaced", func() {
				So(seen, ShouldNotEqual, "<script>")
			})
		})
	})
}

func TestErrorHelpers(t *testing.T) {
	Convey("Given op-tagged errors", t, func() {
		cause := errors.New("eof")

		Convey("Then kinds and causes are both matchable", func() {
			err := api.WrapKind("api.op", api.ErrBadRequest, cause)
			So(err.Error(), ShouldEqual, "api.op: bad request: eof")
			So(errors.Is(err, api.ErrBadRequest), ShouldBeTrue)
			So(errors.Is(err, cause), ShouldBeTrue)
		})

		Convey("And NewKind carries only the kind", func() {
			err := api.NewKind("api.op", api.ErrRateLimited)
			So(err.Error(), ShouldEqual, "api.op: rate limited")
			So(errors.Is(err, api.ErrRateLimited), ShouldBeTrue)
		})

		Convey("And Wrap of nil is nil", func() {
			So(api.Wrap("api.op", nil), ShouldBeNil)
			So(api.Wrap("api.op", cause).Error(), ShouldEqual, "api.op: eof")
		})
	})
}
