package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/couchcryptid/mesonet-etl/internal/config"
	"github.com/couchcryptid/mesonet-etl/internal/domain"
	"github.com/couchcryptid/mesonet-etl/internal/retrieval"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
)

type tableResponse struct {
	Mode     string             `json:"mode"`
	Path     string             `json:"path"`
	Filename string             `json:"filename"`
	Table    domain.MaskedTable `json:"table"`
}

// handleTable serves GET /v1/table?date=YYYYMMDD[HHMM]&site=&fields=&unpack=.
func handleTable(fetcher TableFetcher, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := parseTableRequest(r)
		if err != nil {
			sharedobs.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}

		res, err := fetcher.Fetch(r.Context(), req)
		if err != nil {
			status := statusFor(err)
			if status >= http.StatusInternalServerError {
				logger.Error("table fetch failed", "error", err, "site", req.Station)
			}
			sharedobs.WriteJSON(w, status, map[string]string{"error": err.Error()})
			return
		}

		sharedobs.WriteJSON(w, http.StatusOK, tableResponse{
			Mode:     res.Address.Mode.String(),
			Path:     res.Address.Dir,
			Filename: res.Address.Filename,
			Table:    res.Table,
		})
	}
}

func parseTableRequest(r *http.Request) (retrieval.Request, error) {
	q := r.URL.Query()
	req := retrieval.Request{
		Station: q.Get("site"),
		Fields:  config.ParseFields(q.Get("fields")),
		Unpack:  true,
	}

	if d := q.Get("date"); d != "" {
		t, err := domain.ParseDate(d)
		if err != nil {
			return req, err
		}
		req.Time = t
	}

	if u := q.Get("unpack"); u != "" {
		unpack, err := strconv.ParseBool(u)
		if err != nil {
			return req, fmt.Errorf("invalid unpack %q", u)
		}
		req.Unpack = unpack
	}

	for _, f := range req.Fields {
		if _, err := domain.ResolveVariable(f); err != nil {
			return req, err
		}
	}
	return req, nil
}

func statusFor(err error) int {
	var te *domain.TransportError
	switch {
	case errors.Is(err, domain.ErrUnknownVariable):
		return http.StatusBadRequest
	case errors.As(err, &te) && te.StatusCode == http.StatusNotFound:
		return http.StatusNotFound
	case errors.Is(err, domain.ErrTransport), errors.Is(err, domain.ErrMalformedRecord):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
