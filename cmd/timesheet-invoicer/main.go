package main

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
	"github.com/shopspring/decimal"
	"github.com/zombor/timesheet-invoicer/internal/invoice"
	"github.com/zombor/timesheet-invoicer/internal/pay"
	"github.com/zombor/timesheet-invoicer/internal/render"
	"github.com/zombor/timesheet-invoicer/internal/scanning"
	"github.com/zombor/timesheet-invoicer/internal/timesheet"
)

//go:embed VERSION.txt
var versionFile string

var version = strings.TrimSpace(versionFile)

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "--version" || arg == "-version" || arg == "-v" {
			fmt.Println(version)
			os.Exit(0)
		}
	}

	defaults := render.DefaultLetterhead()
	rates := pay.DefaultRates()

	fs := ff.NewFlagSet("timesheet-invoicer")
	var (
		port        = fs.IntLong("port", 8080, "HTTP server port")
		logLevel    = fs.StringLong("log-level", "info", "Log level: debug, info, warn or error")
		_           = fs.StringLong("config", "", "Config file path (optional, one 'flag value' per line)")
		scannerType = fs.StringLong("scanner", "gemini", "Scanner type: 'gemini', 'ollama' or 'tesseract'")
		ocrTimeout  = fs.DurationLong("ocr-timeout", 2*time.Minute, "Maximum time to spend recognizing one timesheet")
		geminiKey   = fs.StringLong("gemini-key", "", "Google Gemini API key (or set GEMINI_API_KEY env var)")
		geminiModel = fs.StringLong("gemini-model", "gemini-2.5-pro", "Google Gemini model name")
		ollamaURL   = fs.StringLong("ollama-url", "http://localhost:11434", "Ollama API base URL")
		ollamaModel = fs.StringLong("ollama-model", "llava", "Ollama model name (e.g., llava, qwen2-vl)")
		tessBinary  = fs.StringLong("tesseract-bin", "tesseract", "Tesseract binary")
		tessLang    = fs.StringLong("tesseract-lang", "eng", "Tesseract language")
		tessPSM     = fs.IntLong("tesseract-psm", 0, "Tesseract page segmentation mode (0 keeps the default)")
		tessData    = fs.StringLong("tesseract-data", "", "Tesseract tessdata directory (optional)")

		dailyRate     = fs.StringLong("daily-rate", rates.DailyRate.String(), "Flat pay per shift")
		otRate        = fs.StringLong("ot-rate", rates.OTRate.String(), "Pay per overtime hour")
		standardHours = fs.Float64Long("standard-hours", rates.StandardHours, "Hours in a shift before overtime starts")
		roundingStep  = fs.Float64Long("rounding-step", rates.RoundingStep, "Hour granularity used when rounding is on")

		companyName   = fs.StringLong("company-name", defaults.Company.Name, "Company name")
		companyTag    = fs.StringLong("company-tagline", defaults.Company.Tagline, "Tagline under the company name")
		companyAddr   = fs.StringLong("company-address", defaults.Company.Address, "Company street address")
		companyCity   = fs.StringLong("company-city", defaults.Company.City, "Company city")
		companyPost   = fs.StringLong("company-postcode", defaults.Company.Postcode, "Company postcode")
		companyPhone  = fs.StringLong("company-phone", defaults.Company.Phone, "Company phone")
		companyEmail  = fs.StringLong("company-email", defaults.Company.Email, "Company email")
		companyUTR    = fs.StringLong("company-utr", defaults.Company.UTR, "Unique taxpayer reference")
		bankName      = fs.StringLong("bank-name", defaults.Company.BankName, "Bank name")
		accountName   = fs.StringLong("account-name", defaults.Company.AccountName, "Bank account name")
		accountNumber = fs.StringLong("account-number", defaults.Company.AccountNumber, "Bank account number")
		sortCode      = fs.StringLong("sort-code", defaults.Company.SortCode, "Bank sort code")
		clientName    = fs.StringLong("client-name", defaults.Client.Name, "Client name")
		clientAddr    = fs.StringLong("client-address", defaults.Client.Address, "Client street address")
		clientCity    = fs.StringLong("client-city", defaults.Client.City, "Client city")
		clientPost    = fs.StringLong("client-postcode", defaults.Client.Postcode, "Client postcode")

		filePrefix  = fs.StringLong("file-prefix", "invoice", "Prefix for exported file names")
		description = fs.StringLong("description", timesheet.DefaultDescription, "Description given to recognized shifts")
		showVersion = fs.BoolLong("version", "Show version information")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("TIMESHEET_INVOICER"),
		ff.WithConfigFileFlag("config"),
		ff.WithConfigFileParser(ff.PlainParser),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	// Check version flag after parsing
	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(*logLevel)); err != nil {
		fmt.Fprintf(os.Stderr, "error: invalid log level %q\n", *logLevel)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	var err error
	if rates.DailyRate, err = decimal.NewFromString(*dailyRate); err != nil {
		slog.Error("Invalid daily rate", "value", *dailyRate, "error", err)
		os.Exit(1)
	}
	if rates.OTRate, err = decimal.NewFromString(*otRate); err != nil {
		slog.Error("Invalid overtime rate", "value", *otRate, "error", err)
		os.Exit(1)
	}
	if rates.DailyRate.IsNegative() || rates.OTRate.IsNegative() || *standardHours < 0 || *roundingStep <= 0 {
		slog.Error("Rates and hours must be positive")
		os.Exit(1)
	}
	rates.StandardHours = *standardHours
	rates.RoundingStep = *roundingStep

	ctx := context.Background()

	// Initialize scanner based on type
	var scanner scanning.Scanner
	switch *scannerType {
	case "gemini":
		// Get Gemini API key from flag or environment
		apiKey := *geminiKey
		if apiKey == "" {
			apiKey = os.Getenv("GEMINI_API_KEY")
		}
		if apiKey == "" {
			slog.Error("Gemini API key is required. Set --gemini-key flag or GEMINI_API_KEY environment variable")
			os.Exit(1)
		}
		slog.Info("Initializing Gemini scanner...", "model", *geminiModel)
		scanner, err = scanning.NewGemini(ctx, apiKey, *geminiModel)
		if err != nil {
			slog.Error("Failed to initialize Gemini", "error", err)
			os.Exit(1)
		}
	case "ollama":
		slog.Info("Initializing Ollama scanner...", "url", *ollamaURL, "model", *ollamaModel)
		scanner, err = scanning.NewOllama(*ollamaURL, *ollamaModel)
		if err != nil {
			slog.Error("Failed to initialize Ollama", "error", err)
			os.Exit(1)
		}
	case "tesseract":
		slog.Info("Initializing Tesseract scanner...", "binary", *tessBinary, "lang", *tessLang)
		scanner = scanning.NewTesseract(scanning.TesseractConfig{
			Binary:      *tessBinary,
			Language:    *tessLang,
			PSM:         *tessPSM,
			TessdataDir: *tessData,
		})
	default:
		slog.Error("Invalid scanner type", "type", *scannerType, "valid", "gemini, ollama or tesseract")
		os.Exit(1)
	}
	defer scanner.Close()

	letterhead := render.Letterhead{
		Company: render.Company{
			Name:          *companyName,
			Tagline:       *companyTag,
			Address:       *companyAddr,
			City:          *companyCity,
			Postcode:      *companyPost,
			Phone:         *companyPhone,
			Email:         *companyEmail,
			UTR:           *companyUTR,
			BankName:      *bankName,
			AccountName:   *accountName,
			AccountNumber: *accountNumber,
			SortCode:      *sortCode,
		},
		Client: render.Client{
			Name:     *clientName,
			Address:  *clientAddr,
			City:     *clientCity,
			Postcode: *clientPost,
		},
	}

	calc := pay.NewCalculator(rates)
	extractor := timesheet.NewExtractor(calc, timesheet.WithDescription(*description))
	renderers := []render.Renderer{
		render.NewPDF(letterhead, rates),
		render.NewXLSX(letterhead, rates),
	}
	service := invoice.NewService(calc, scanner, extractor, renderers, invoice.Config{
		OCRTimeout:  *ocrTimeout,
		FilePrefix:  *filePrefix,
		Description: *description,
	})

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", *port),
		Handler:           invoice.NewServer(service),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in goroutine
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("Server started", "address", fmt.Sprintf("http://localhost%s", httpServer.Addr), "version", version, "scanner", *scannerType)

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	slog.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("Error shutting down server", "error", err)
	}
	service.Wait()
}
