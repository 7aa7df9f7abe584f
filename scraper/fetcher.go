// Package scraper runs the case-movement query against the e-SAJ portal:
// search request, redirect hop, extraction, and the retry policy around them.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/reissbruno/monitoramento-processual-tjsp/config"
	"github.com/reissbruno/monitoramento-processual-tjsp/engine"
	"github.com/reissbruno/monitoramento-processual-tjsp/models"
)

// searchQuery is the query string the portal's search form submits for a
// unified case number lookup. %s receives the escaped case number.
const searchQuery = "conversationId=&cbPesquisa=NUMPROC" +
	"&numeroDigitoAnoUnificado=&foroNumeroUnificado=" +
	"&dadosConsulta.valorConsultaNuUnificado=&dadosConsulta.valorConsultaNuUnificado=UNIFICADO" +
	"&dadosConsulta.valorConsulta=%s" +
	"&dadosConsulta.tipoNuProcesso=SAJ"

const searchPath = "/cpopg/search.do"

var (
	errEmptyCaseID      = errors.New("scraper: empty case number")
	errRetriesExhausted = errors.New("scraper: retry ceiling reached")
)

// Extractor turns a decoded case page into movement records.
type Extractor interface {
	Extract(html string) ([]models.Movement, error)
}

// Session is the transport resource of one attempt.
type Session interface {
	Get(ctx context.Context, rawURL string, followRedirects bool) (*engine.Page, error)
	Close()
}

// Fetcher performs logical fetches. It holds no per-call state and is safe
// for concurrent use as long as each call gets its own Telemetry.
type Fetcher struct {
	cfg        config.PortalConfig
	base       *url.URL
	extractor  Extractor
	newSession func() (Session, error)
	now        func() time.Time
}

// NewFetcher validates the portal configuration and returns a Fetcher that
// opens a fresh engine.Session for every attempt.
func NewFetcher(cfg config.PortalConfig, ex Extractor) (*Fetcher, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("scraper: parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("scraper: base url %q must be absolute", cfg.BaseURL)
	}

	opts := engine.Options{
		Timeout:     cfg.Timeout,
		InsecureTLS: cfg.InsecureTLS,
		UserAgent:   cfg.UserAgent,
		Host:        cfg.Host,
	}

	return &Fetcher{
		cfg:       cfg,
		base:      base,
		extractor: ex,
		newSession: func() (Session, error) {
			s, err := engine.NewSession(opts)
			if err != nil {
				return nil, err
			}
			return s, nil
		},
		now: time.Now,
	}, nil
}

// MaxRetries returns the attempt ceiling.
func (f *Fetcher) MaxRetries() int { return f.cfg.MaxRetries }

// Fetch retrieves the movements of caseID.
//
// An empty case number is rejected without touching tel. Otherwise the whole
// request sequence is retried, from the search request, while failures are
// structural and tel.Attempts is below the ceiling. Transport failures end
// the fetch at once. Every result past validation carries the final
// telemetry snapshot.
//
// tel may be nil, in which case a fresh Telemetry is used.
func (f *Fetcher) Fetch(ctx context.Context, caseID string, tel *models.Telemetry) *models.FetchResult {
	caseID = strings.TrimSpace(caseID)
	if caseID == "" {
		slog.Warn("rejecting fetch without case number")
		return models.NewErrorResult(models.CodeUnprocessable, models.MsgUnprocessable, errEmptyCaseID)
	}
	if tel == nil {
		tel = models.NewTelemetry()
	}
	tel.Start()

	result := f.run(ctx, caseID, tel)
	result.Telemetry = tel.Finish()
	return result
}

func (f *Fetcher) run(ctx context.Context, caseID string, tel *models.Telemetry) *models.FetchResult {
	for {
		if tel.Attempts >= f.cfg.MaxRetries {
			slog.Error("retry ceiling reached",
				"processo", caseID,
				"tentativas", tel.Attempts,
				"max", f.cfg.MaxRetries,
			)
			return models.NewErrorResult(models.CodeRetriesExhausted, models.MsgInternal, errRetriesExhausted)
		}

		slog.Info("fetch started", "processo", caseID, "tentativa", tel.Attempts)

		movements, err := f.attempt(ctx, caseID, tel)
		if err == nil {
			slog.Info("fetch succeeded",
				"processo", caseID,
				"tentativa", tel.Attempts,
				"movimentacoes", len(movements),
			)
			return models.NewSuccessResult(f.now(), movements)
		}

		// TODO: transport errors are the transient class; revisit retrying
		// them once the portal's timeout behaviour under load is measured.
		if engine.IsTransport(err) {
			slog.Error("portal request failed", "processo", caseID, "error", err)
			return models.NewErrorResult(models.CodeInternal, models.MsgInternal, err)
		}

		slog.Error("fetch attempt failed", "processo", caseID, "tentativa", tel.Attempts, "error", err)
		tel.Attempts++
		slog.Info("retrying fetch", "processo", caseID, "tentativa", tel.Attempts)
	}
}

// attempt runs the search request, the optional redirect hop and the
// extraction over a session that is closed before returning.
func (f *Fetcher) attempt(ctx context.Context, caseID string, tel *models.Telemetry) ([]models.Movement, error) {
	sess, err := f.newSession()
	if err != nil {
		return nil, fmt.Errorf("scraper: open session: %w", err)
	}
	defer sess.Close()

	page, err := sess.Get(ctx, f.searchURL(caseID), false)
	if err != nil {
		return nil, err
	}
	tel.AddBytes(page.Bytes)

	if page.IsRedirect() {
		target, err := engine.CleanRedirect(f.base, page.Header.Get("Location"))
		if err != nil {
			return nil, err
		}
		slog.Info("following portal redirect", "processo", caseID, "url", target)

		page, err = sess.Get(ctx, target, true)
		if err != nil {
			return nil, err
		}
		tel.AddBytes(page.Bytes)
	}

	movements, err := f.extractor.Extract(engine.DecodeBody(page))
	if err != nil {
		return nil, fmt.Errorf("scraper: extract movements: %w", err)
	}
	return movements, nil
}

func (f *Fetcher) searchURL(caseID string) string {
	return f.base.String() + searchPath + "?" + fmt.Sprintf(searchQuery, url.QueryEscape(caseID))
}
