package invoice

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"regexp"
	"strings"
	"time"

	"github.com/zombor/timesheet-invoicer/internal/pay"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"
)

var _ = Describe("Server", func() {
	var (
		scanner     *mockScanner
		service     *Service
		server      *Server
		ghttpServer *ghttp.Server
	)

	BeforeEach(func() {
		scanner = &mockScanner{text: "05/10/2024 08:00 18:00\n06/10/2024 07:00 19:00"}
		service = newTestService(scanner, Config{OCRTimeout: time.Second, FilePrefix: "invoice"})
		server = NewServerWithMux(service, http.NewServeMux())
		ghttpServer = ghttp.NewServer()
		for _, method := range []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions} {
			ghttpServer.RouteToHandler(method, regexp.MustCompile(`^/api/`), server.ServeHTTP)
		}
	})

	AfterEach(func() {
		service.Wait()
		ghttpServer.Close()
	})

	do := func(method, path string, body any) *http.Response {
		var r io.Reader
		if body != nil {
			b, err := json.Marshal(body)
			Expect(err).NotTo(HaveOccurred())
			r = bytes.NewReader(b)
		}
		req, err := http.NewRequest(method, ghttpServer.URL()+path, r)
		Expect(err).NotTo(HaveOccurred())
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		resp, err := http.DefaultClient.Do(req)
		Expect(err).NotTo(HaveOccurred())
		return resp
	}

	decode := func(resp *http.Response, v any) {
		defer resp.Body.Close()
		Expect(json.NewDecoder(resp.Body).Decode(v)).To(Succeed())
	}

	errorOf := func(resp *http.Response) string {
		var body map[string]string
		decode(resp, &body)
		return body["error"]
	}

	upload := func(filename, contentType string, data []byte) *http.Response {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
		if contentType != "" {
			h.Set("Content-Type", contentType)
		}
		part, err := mw.CreatePart(h)
		Expect(err).NotTo(HaveOccurred())
		_, err = part.Write(data)
		Expect(err).NotTo(HaveOccurred())
		Expect(mw.Close()).To(Succeed())

		resp, err := http.Post(ghttpServer.URL()+"/api/timesheets", mw.FormDataContentType(), &buf)
		Expect(err).NotTo(HaveOccurred())
		return resp
	}

	manualEntry := func() []pay.Shift {
		resp := do(http.MethodPost, "/api/manual", nil)
		Expect(resp.StatusCode).To(Equal(http.StatusCreated))
		var body shiftsResponse
		decode(resp, &body)
		return body.Shifts
	}

	Describe("CORS", func() {
		It("sets headers on every response", func() {
			resp := do(http.MethodGet, "/api/status", nil)
			defer resp.Body.Close()
			Expect(resp.Header.Get("Access-Control-Allow-Origin")).To(Equal("*"))
		})

		It("answers preflight requests", func() {
			resp := do(http.MethodOptions, "/api/shifts/abc", nil)
			defer resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusNoContent))
			Expect(resp.Header.Get("Access-Control-Allow-Methods")).To(ContainSubstring("PATCH"))
		})

		It("sets headers on errors", func() {
			resp := do(http.MethodDelete, "/api/shifts/missing", nil)
			defer resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
			Expect(resp.Header.Get("Access-Control-Allow-Origin")).To(Equal("*"))
		})
	})

	Describe("POST /api/timesheets", func() {
		It("accepts the upload and processes it in the background", func() {
			resp := upload("sheet.jpg", "image/jpeg", []byte("jpeg"))
			Expect(resp.StatusCode).To(Equal(http.StatusAccepted))
			var status Recognition
			decode(resp, &status)
			Expect(status.Status).To(Equal(StatusProcessing))

			Eventually(func() Status {
				var s Recognition
				decode(do(http.MethodGet, "/api/status", nil), &s)
				return s.Status
			}).Should(Equal(StatusSuccess))

			var shifts shiftsResponse
			decode(do(http.MethodGet, "/api/shifts", nil), &shifts)
			Expect(shifts.Shifts).To(HaveLen(2))
			Expect(shifts.RoundHours).To(BeTrue())
		})

		It("guesses the content type from the file name", func() {
			resp := upload("scan.PDF", "", []byte("%PDF"))
			defer resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusAccepted))
		})

		It("rejects unsupported files", func() {
			resp := upload("notes.txt", "text/plain", []byte("hello"))
			Expect(resp.StatusCode).To(Equal(http.StatusUnsupportedMediaType))
			Expect(errorOf(resp)).To(ContainSubstring("unsupported file type"))
		})

		It("rejects a request without a file", func() {
			resp, err := http.Post(ghttpServer.URL()+"/api/timesheets", "multipart/form-data; boundary=x", strings.NewReader("--x--\r\n"))
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
			Expect(errorOf(resp)).NotTo(BeEmpty())
		})

		When("a recognition is already running", func() {
			BeforeEach(func() {
				scanner.release = make(chan struct{})
			})

			It("returns 409", func() {
				first := upload("a.jpg", "image/jpeg", []byte("jpeg"))
				first.Body.Close()
				Expect(first.StatusCode).To(Equal(http.StatusAccepted))

				resp := upload("b.jpg", "image/jpeg", []byte("jpeg"))
				Expect(resp.StatusCode).To(Equal(http.StatusConflict))
				Expect(errorOf(resp)).To(ContainSubstring("already being processed"))
				close(scanner.release)
			})
		})
	})

	Describe("shift editing", func() {
		var shifts []pay.Shift

		BeforeEach(func() {
			shifts = manualEntry()
			Expect(shifts).To(HaveLen(1))
		})

		It("adds a shift", func() {
			resp := do(http.MethodPost, "/api/shifts", nil)
			Expect(resp.StatusCode).To(Equal(http.StatusCreated))
			var shift pay.Shift
			decode(resp, &shift)
			Expect(shift.StartTime).To(Equal("06:00"))
			Expect(shift.EndTime).To(Equal("16:00"))
			Expect(service.Shifts()).To(HaveLen(2))
		})

		It("changes a time and returns the recomputed shift", func() {
			resp := do(http.MethodPatch, "/api/shifts/"+shifts[0].ID, map[string]any{"field": "end", "value": "16:00"})
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			var shift pay.Shift
			decode(resp, &shift)
			Expect(shift.Hours).To(Equal(10.0))
			Expect(shift.Amount.StringFixed(2)).To(Equal("140.00"))
		})

		It("overrides hours from a number or a numeric string", func() {
			resp := do(http.MethodPatch, "/api/shifts/"+shifts[0].ID, map[string]any{"field": "hours", "value": 11})
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			resp.Body.Close()

			resp = do(http.MethodPatch, "/api/shifts/"+shifts[0].ID, map[string]any{"field": "overtime_hours", "value": "3"})
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			var shift pay.Shift
			decode(resp, &shift)
			Expect(shift.Hours).To(Equal(11.0))
			Expect(shift.OvertimeHours).To(Equal(3.0))
			Expect(shift.Amount.StringFixed(2)).To(Equal("182.00"))
		})

		It("sets the rate from a number", func() {
			resp := do(http.MethodPatch, "/api/shifts/"+shifts[0].ID, map[string]any{"field": "rate", "value": 150})
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			var shift pay.Shift
			decode(resp, &shift)
			Expect(shift.Rate.StringFixed(2)).To(Equal("150.00"))
		})

		It("rejects unknown fields", func() {
			resp := do(http.MethodPatch, "/api/shifts/"+shifts[0].ID, map[string]any{"field": "amount", "value": 1})
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
			Expect(errorOf(resp)).To(ContainSubstring("unknown field"))
		})

		It("rejects non-numeric hours", func() {
			resp := do(http.MethodPatch, "/api/shifts/"+shifts[0].ID, map[string]any{"field": "hours", "value": "lots"})
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
			resp.Body.Close()
		})

		It("returns 404 for an unknown shift", func() {
			resp := do(http.MethodPatch, "/api/shifts/missing", map[string]any{"field": "start", "value": "06:00"})
			Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
			resp.Body.Close()
		})

		It("refuses to delete the last shift", func() {
			resp := do(http.MethodDelete, "/api/shifts/"+shifts[0].ID, nil)
			Expect(resp.StatusCode).To(Equal(http.StatusConflict))
			Expect(errorOf(resp)).To(ContainSubstring("last shift"))
			Expect(service.Shifts()).To(HaveLen(1))
		})

		It("deletes a shift when others remain", func() {
			do(http.MethodPost, "/api/shifts", nil).Body.Close()
			resp := do(http.MethodDelete, "/api/shifts/"+shifts[0].ID, nil)
			resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusNoContent))
			Expect(service.Shifts()).To(HaveLen(1))
		})

		It("reports how many shifts a rounding change recalculated", func() {
			do(http.MethodPost, "/api/shifts", nil).Body.Close()
			resp := do(http.MethodPut, "/api/rounding", map[string]any{"round_hours": false})
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			var body struct {
				RoundHours   bool        `json:"round_hours"`
				Recalculated int         `json:"recalculated"`
				Shifts       []pay.Shift `json:"shifts"`
			}
			decode(resp, &body)
			Expect(body.RoundHours).To(BeFalse())
			Expect(body.Recalculated).To(Equal(2))
			Expect(body.Shifts).To(HaveLen(2))
		})

		It("requires round_hours", func() {
			resp := do(http.MethodPut, "/api/rounding", map[string]any{})
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
			resp.Body.Close()
		})
	})

	Describe("invoice", func() {
		BeforeEach(func() {
			manualEntry()
		})

		It("returns the totals", func() {
			var inv pay.Invoice
			decode(do(http.MethodGet, "/api/invoice", nil), &inv)
			Expect(inv.InvoiceNumber).To(Equal("OCT/001"))
			Expect(inv.Days).To(Equal(1))
			Expect(inv.GrandTotal.StringFixed(2)).To(Equal("168.00"))
		})

		It("updates the number and date", func() {
			resp := do(http.MethodPut, "/api/invoice", map[string]any{"invoice_number": "OCT/009", "invoice_date": "2024-10-31"})
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			var inv pay.Invoice
			decode(resp, &inv)
			Expect(inv.InvoiceNumber).To(Equal("OCT/009"))
			Expect(inv.InvoiceDate).To(Equal("2024-10-31"))
		})

		It("rejects a malformed date without changing anything", func() {
			resp := do(http.MethodPut, "/api/invoice", map[string]any{"invoice_number": "OCT/009", "invoice_date": "31/10/2024"})
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
			resp.Body.Close()
			Expect(service.Invoice().InvoiceNumber).To(Equal("OCT/001"))
		})

		It("downloads the PDF", func() {
			resp := do(http.MethodGet, "/api/invoice/pdf", nil)
			defer resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(resp.Header.Get("Content-Type")).To(Equal("application/pdf"))
			Expect(resp.Header.Get("Content-Disposition")).To(Equal(`attachment; filename="invoice_OCT_001.pdf"`))
			body, err := io.ReadAll(resp.Body)
			Expect(err).NotTo(HaveOccurred())
			Expect(bytes.HasPrefix(body, []byte("%PDF"))).To(BeTrue())
		})

		It("downloads the workbook", func() {
			resp := do(http.MethodGet, "/api/invoice/xlsx", nil)
			defer resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(resp.Header.Get("Content-Disposition")).To(ContainSubstring("invoice_OCT_001.xlsx"))
		})
	})

	Describe("POST /api/reset", func() {
		It("clears the shifts", func() {
			manualEntry()
			resp := do(http.MethodPost, "/api/reset", nil)
			resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusNoContent))
			Expect(service.Shifts()).To(BeEmpty())
		})
	})
})
