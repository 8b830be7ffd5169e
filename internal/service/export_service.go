package service

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ai-blog-writer/internal/models"
	"github.com/ai-blog-writer/internal/repository"
	"github.com/ai-blog-writer/internal/validation"
	"github.com/rs/zerolog"
)

// Export formats accepted by ExportService
const (
	FormatNDJSON = "ndjson"
	FormatJSON   = "json"
	FormatCSV    = "csv"
)

const flushEvery = 100

var scheduleCSVHeader = []string{
	"id", "article_id", "scheduled_at", "timezone", "recurrence_type",
	"recurrence_interval", "platforms", "status", "published_at", "updated_at",
}

// exportService is the concrete implementation of ExportService
type exportService struct {
	schedules repository.ScheduleRepository
	log       zerolog.Logger
}

func newExportService(schedules repository.ScheduleRepository, log zerolog.Logger) *exportService {
	return &exportService{
		schedules: schedules,
		log:       log.With().Str("service", "export").Logger(),
	}
}

// StreamSchedules writes the publication calendar in the requested format.
// Headers are committed with the first row, so a query that fails before
// any row is read leaves the response untouched for the caller to report.
// After that, rows are flushed every flushEvery rows.
func (s *exportService) StreamSchedules(ctx context.Context, w http.ResponseWriter, format string) error {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = FormatNDJSON
	}

	var err error
	count := 0
	switch format {
	case FormatNDJSON:
		count, err = s.streamNDJSON(ctx, w)
	case FormatJSON:
		count, err = s.streamJSON(ctx, w)
	case FormatCSV:
		count, err = s.streamCSV(ctx, w)
	default:
		return fmt.Errorf("%w: %w", ErrValidation, validation.NewFieldError("format", "format must be one of: ndjson, json, csv"))
	}

	s.log.Info().Str("format", format).Int("count", count).Msg("Schedule export completed")
	return err
}

func (s *exportService) streamNDJSON(ctx context.Context, w http.ResponseWriter) (int, error) {
	flusher, _ := w.(http.Flusher)
	enc := json.NewEncoder(w)
	started := false
	count := 0

	err := s.schedules.StreamAll(ctx, func(schedule *models.Schedule) error {
		if !started {
			started = true
			setDownloadHeaders(w, "application/x-ndjson", "schedules.ndjson")
		}
		if err := enc.Encode(schedule); err != nil {
			return err
		}
		count++
		if count%flushEvery == 0 && flusher != nil {
			flusher.Flush()
		}
		return nil
	})
	if err != nil {
		return count, err
	}
	if !started {
		setDownloadHeaders(w, "application/x-ndjson", "schedules.ndjson")
	}
	return count, nil
}

func (s *exportService) streamJSON(ctx context.Context, w http.ResponseWriter) (int, error) {
	flusher, _ := w.(http.Flusher)
	begin := func() error {
		setDownloadHeaders(w, "application/json", "schedules.json")
		_, err := w.Write([]byte("["))
		return err
	}
	count := 0

	err := s.schedules.StreamAll(ctx, func(schedule *models.Schedule) error {
		data, err := json.Marshal(schedule)
		if err != nil {
			return err
		}
		sep := []byte(",")
		if count == 0 {
			if err := begin(); err != nil {
				return err
			}
			sep = nil
		}
		if _, err := w.Write(append(sep, data...)); err != nil {
			return err
		}
		count++
		if count%flushEvery == 0 && flusher != nil {
			flusher.Flush()
		}
		return nil
	})
	if err != nil {
		return count, err
	}
	if count == 0 {
		if err := begin(); err != nil {
			return 0, err
		}
	}

	_, err = w.Write([]byte("]"))
	return count, err
}

func (s *exportService) streamCSV(ctx context.Context, w http.ResponseWriter) (int, error) {
	flusher, _ := w.(http.Flusher)
	writer := csv.NewWriter(w)
	begin := func() error {
		setDownloadHeaders(w, "text/csv; charset=utf-8", "schedules.csv")
		return writer.Write(scheduleCSVHeader)
	}
	count := 0

	err := s.schedules.StreamAll(ctx, func(schedule *models.Schedule) error {
		if count == 0 {
			if err := begin(); err != nil {
				return err
			}
		}
		if err := writer.Write(scheduleRecord(schedule)); err != nil {
			return err
		}
		count++
		if count%flushEvery == 0 {
			writer.Flush()
			if err := writer.Error(); err != nil {
				return err
			}
			if flusher != nil {
				flusher.Flush()
			}
		}
		return nil
	})
	if err == nil && count == 0 {
		err = begin()
	}
	writer.Flush()
	if err != nil {
		return count, err
	}
	return count, writer.Error()
}

func scheduleRecord(s *models.Schedule) []string {
	publishedAt := ""
	if s.PublishedAt != nil {
		publishedAt = s.PublishedAt.UTC().Format(time.RFC3339)
	}
	return []string{
		s.ID,
		s.ArticleID,
		s.ScheduledAt.UTC().Format(time.RFC3339),
		s.Timezone,
		string(s.RecurrenceType),
		strconv.Itoa(s.RecurrenceInterval),
		strings.Join(s.Platforms, ";"),
		string(s.Status),
		publishedAt,
		s.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func setDownloadHeaders(w http.ResponseWriter, contentType, filename string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)
}
