package httpserver_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/service-a/internal/httpserver"
	"github.com/angeloszaimis/service-a/pkg/logger"
)

var _ = Describe("Middleware", func() {
	Describe("Chain", func() {
		It("applies the first middleware outermost", func() {
			var order []string
			mark := func(name string) httpserver.Middleware {
				return func(next http.Handler) http.Handler {
					return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
						order = append(order, name)
						next.ServeHTTP(w, r)
					})
				}
			}

			h := httpserver.Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, "handler")
			}), mark("outer"), mark("inner"))

			h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
			Expect(order).To(Equal([]string{"outer", "inner", "handler"}))
		})
	})

	Describe("Recover", func() {
		var buf *bytes.Buffer

		BeforeEach(func() {
			buf = &bytes.Buffer{}
		})

		It("turns a panic into a JSON 500 and logs it", func() {
			log := logger.NewWithWriter(buf, "info", logger.Identity{Component: "service-a", Cluster: "c", Pod: "p"})
			h := httpserver.Recover(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				panic("kaboom")
			}))

			w := httptest.NewRecorder()
			Expect(func() {
				h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
			}).NotTo(Panic())

			Expect(w.Code).To(Equal(http.StatusInternalServerError))
			Expect(w.Body.String()).To(MatchJSON(`{"detail":"Internal Server Error"}`))

			var entry map[string]any
			Expect(json.Unmarshal(buf.Bytes(), &entry)).To(Succeed())
			Expect(entry).To(HaveKeyWithValue("level", "error"))
			Expect(entry["message"]).To(ContainSubstring("kaboom"))
			Expect(entry).To(HaveKeyWithValue("pod", "p"))
		})

		It("lets normal responses through", func() {
			log := logger.NewWithWriter(buf, "info", logger.Identity{})
			h := httpserver.Recover(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusAccepted)
			}))

			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
			Expect(w.Code).To(Equal(http.StatusAccepted))
			Expect(buf.Len()).To(BeZero())
		})

		It("aborts instead of rewriting a response that already started", func() {
			log := logger.NewWithWriter(buf, "info", logger.Identity{Component: "service-a", Cluster: "c", Pod: "p"})
			h := httpserver.Recover(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				w.Write([]byte(`{"partial":`))
				panic("kaboom")
			}))

			w := httptest.NewRecorder()
			Expect(func() {
				h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
			}).To(PanicWith(http.ErrAbortHandler))

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Body.String()).To(Equal(`{"partial":`))

			var entry map[string]any
			Expect(json.Unmarshal(buf.Bytes(), &entry)).To(Succeed())
			Expect(entry).To(HaveKeyWithValue("level", "error"))
			Expect(entry).To(HaveKeyWithValue("status_code", BeNumerically("==", 200)))
			Expect(entry["message"]).To(ContainSubstring("after the response started"))
		})

		It("treats a bare Write as a started response", func() {
			log := logger.NewWithWriter(buf, "info", logger.Identity{})
			h := httpserver.Recover(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("x"))
				panic("kaboom")
			}))

			Expect(func() {
				h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
			}).To(PanicWith(http.ErrAbortHandler))
		})

		It("still answers 500 after only setting headers", func() {
			log := logger.NewWithWriter(buf, "info", logger.Identity{})
			h := httpserver.Recover(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("X-Partial", "yes")
				panic("kaboom")
			}))

			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
			Expect(w.Code).To(Equal(http.StatusInternalServerError))
		})

		It("re-raises http.ErrAbortHandler", func() {
			log := logger.NewWithWriter(buf, "info", logger.Identity{})
			h := httpserver.Recover(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				panic(http.ErrAbortHandler)
			}))

			Expect(func() {
				h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
			}).To(PanicWith(http.ErrAbortHandler))
		})
	})
})
