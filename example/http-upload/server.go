package main

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/bytedance/sonic"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/mazrean/partstream"
	httpform "github.com/mazrean/partstream/http"
	"github.com/mazrean/partstream/metrics"
)

var (
	errUnsupportedType = errors.New("content type is not supported")
	errMissingID       = errors.New("id must be sent before icon")
	errUserExists      = errors.New("user already exists")
)

type server struct {
	uploadDir string
	logger    *zap.Logger
	options   []partstream.ParserOption
}

func newHandler(cfg *Config, logger *zap.Logger, reg *prometheus.Registry) (http.Handler, error) {
	err := os.MkdirAll(cfg.UploadDir, 0o755)
	if err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}

	observer, err := metrics.NewObserver("partstream", reg)
	if err != nil {
		return nil, err
	}

	s := &server{
		uploadDir: cfg.UploadDir,
		logger:    logger,
		options: append(cfg.parserOptions(),
			partstream.WithLogger(logger),
			partstream.WithObserver(observer),
		),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /submit", s.submit)
	mux.Handle("POST /body", httpform.AttachToBody(http.HandlerFunc(s.body), s.options...))
	mux.Handle("GET /icons/", http.StripPrefix("/icons/", http.FileServer(http.Dir(cfg.UploadDir))))
	mux.Handle("GET /metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	return mux, nil
}

func (s *server) submit(w http.ResponseWriter, r *http.Request) {
	var id string
	router := partstream.NewRouter()
	err := router.Register("icon", func(part *partstream.Part) error {
		if part.ContentType() != "image/png" {
			return errUnsupportedType
		}
		if id == "" {
			return errMissingID
		}

		return s.saveIcon(id, part)
	})
	if err != nil {
		http.Error(w, "failed to register hook", http.StatusInternalServerError)
		return
	}

	req := httpform.NewRequest(r, s.options...)
	if !req.IsMultipart() {
		http.Error(w, partstream.ErrNotMultipart.Error(), http.StatusBadRequest)
		return
	}

	err = req.Parse(router.Handle, partstream.WithFieldHandler(func(field partstream.Field) {
		if field.Name == "id" {
			id = filepath.Base(field.Value)
		}
	}))
	if err != nil {
		s.logger.Info("submit failed", zap.Error(err))
		http.Error(w, err.Error(), submitStatus(err))
		return
	}

	w.WriteHeader(http.StatusCreated)
}

func (s *server) saveIcon(id string, r io.Reader) error {
	file, err := os.OpenFile(filepath.Join(s.uploadDir, id), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, os.ErrExist) {
		return errUserExists
	}
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	_, err = io.Copy(file, r)
	if err != nil {
		return fmt.Errorf("failed to copy: %w", err)
	}

	return nil
}

func submitStatus(err error) int {
	switch {
	case errors.Is(err, errUnsupportedType), errors.Is(err, errMissingID):
		return http.StatusBadRequest
	case errors.Is(err, errUserExists):
		return http.StatusConflict
	default:
		return partstream.HTTPStatus(err)
	}
}

type fileResponse struct {
	FileName    string `json:"filename"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
	Truncated   bool   `json:"truncated"`
}

type bodyResponse struct {
	Fields map[string][]string       `json:"fields"`
	Files  map[string][]fileResponse `json:"files"`
	// LimitReached reports parts dropped over the count limits.
	LimitReached bool `json:"limit_reached"`
}

func (s *server) body(w http.ResponseWriter, r *http.Request) {
	body, ok := httpform.BodyFromContext(r.Context())
	if !ok {
		http.Error(w, partstream.ErrNotMultipart.Error(), http.StatusBadRequest)
		return
	}

	res := bodyResponse{
		Fields:       make(map[string][]string),
		Files:        make(map[string][]fileResponse),
		LimitReached: body.LimitReached(),
	}
	for name, fields := range body.ValueMap() {
		for _, field := range fields {
			res.Fields[name] = append(res.Fields[name], field.Value)
		}
	}
	for name, files := range body.FileMap() {
		for _, file := range files {
			res.Files[name] = append(res.Files[name], fileResponse{
				FileName:    file.FileName,
				ContentType: file.ContentType,
				Size:        file.Size,
				Truncated:   file.Limit,
			})
		}
	}

	data, err := sonic.Marshal(res)
	if err != nil {
		s.logger.Error("failed to marshal body", zap.Error(err))
		http.Error(w, "failed to marshal body", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}
