package services

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mtsuzuki/todo-collab-api/internal/constants"
	"github.com/mtsuzuki/todo-collab-api/internal/models"
	"github.com/mtsuzuki/todo-collab-api/internal/repository"
)

// ErrParse marks an import payload that could not be decoded at all,
// as opposed to a payload that decoded to zero usable records.
var ErrParse = errors.New("import payload could not be parsed")

// csvHeader is the fixed column order of CSV exports. Imports match
// columns by name, not position.
var csvHeader = []string{
	"Title", "Description", "Created At", "Updated At", "Due Date",
	"Priority", "Status", "Completed At", "Category", "Is Shared",
}

const csvTimeLayout = "2006-01-02 15:04:05"

// TransferRecord is the interchange form of a todo. Timestamps are
// RFC 3339 strings in JSON and csvTimeLayout in CSV.
type TransferRecord struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	CreatedAt   *string `json:"created_at"`
	UpdatedAt   *string `json:"updated_at"`
	DueDate     *string `json:"due_date"`
	Priority    string  `json:"priority"`
	Status      string  `json:"status"`
	CompletedAt *string `json:"completed_at"`
	Category    *string `json:"category"`
	IsShared    bool    `json:"is_shared"`
}

// TransferService serializes a user's owned todos to JSON/CSV and
// imports them back. Shared-in todos are never exported; export is
// owner-scoped, unlike list visibility.
type TransferService struct {
	todoRepo     repository.TodoRepository
	categoryRepo repository.CategoryRepository
}

// NewTransferService creates a new TransferService
func NewTransferService(todoRepo repository.TodoRepository, categoryRepo repository.CategoryRepository) *TransferService {
	return &TransferService{
		todoRepo:     todoRepo,
		categoryRepo: categoryRepo,
	}
}

// ExportFileName builds the attachment name for a download
func ExportFileName(username, ext string) string {
	return fmt.Sprintf("todos_%s_%s.%s", username, time.Now().Format("20060102_150405"), ext)
}

// ExportJSON serializes the owner's todos as an indented JSON array
func (s *TransferService) ExportJSON(ownerID uint64, includeCompleted bool) ([]byte, error) {
	records, err := s.exportRecords(ownerID, includeCompleted, time.RFC3339)
	if err != nil {
		return nil, err
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode todos: %w", err)
	}
	return data, nil
}

// ExportCSV serializes the owner's todos with the fixed column order
func (s *TransferService) ExportCSV(ownerID uint64, includeCompleted bool) ([]byte, error) {
	records, err := s.exportRecords(ownerID, includeCompleted, csvTimeLayout)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, r := range records {
		row := []string{
			r.Title,
			r.Description,
			orEmpty(r.CreatedAt),
			orEmpty(r.UpdatedAt),
			orEmpty(r.DueDate),
			r.Priority,
			r.Status,
			orEmpty(r.CompletedAt),
			orEmpty(r.Category),
			strconv.FormatBool(r.IsShared),
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush CSV: %w", err)
	}
	return buf.Bytes(), nil
}

// ImportJSON upserts todos from a JSON export. Existing todos with the
// same title are left untouched but still count as processed.
func (s *TransferService) ImportJSON(ownerID uint64, data []byte) (int, error) {
	var records []TransferRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrParse, err)
	}

	return s.importRecords(ownerID, records)
}

// ImportCSV upserts todos from a CSV export. Columns are matched by
// header name so reordered files still import.
func (s *TransferService) ImportCSV(ownerID uint64, data []byte) (int, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	rows, err := reader.ReadAll()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrParse, err)
	}
	if len(rows) == 0 {
		return 0, nil
	}

	index := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		index[strings.TrimSpace(name)] = i
	}

	field := func(row []string, name string) string {
		i, ok := index[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	records := make([]TransferRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		record := TransferRecord{
			Title:       field(row, "Title"),
			Description: field(row, "Description"),
			CreatedAt:   orNil(field(row, "Created At")),
			UpdatedAt:   orNil(field(row, "Updated At")),
			DueDate:     orNil(field(row, "Due Date")),
			Priority:    field(row, "Priority"),
			Status:      field(row, "Status"),
			CompletedAt: orNil(field(row, "Completed At")),
			Category:    orNil(field(row, "Category")),
			IsShared:    strings.EqualFold(field(row, "Is Shared"), "true"),
		}
		records = append(records, record)
	}

	return s.importRecords(ownerID, records)
}

func (s *TransferService) exportRecords(ownerID uint64, includeCompleted bool, layout string) ([]TransferRecord, error) {
	todos, err := s.todoRepo.ListOwned(ownerID, includeCompleted)
	if err != nil {
		return nil, fmt.Errorf("failed to load todos: %w", err)
	}

	records := make([]TransferRecord, len(todos))
	for i, todo := range todos {
		record := TransferRecord{
			Title:       todo.Title,
			Description: todo.Description,
			CreatedAt:   formatTime(&todo.CreatedAt, layout),
			UpdatedAt:   formatTime(&todo.UpdatedAt, layout),
			DueDate:     formatTime(todo.DueDate, layout),
			Priority:    string(todo.Priority),
			Status:      string(todo.Status),
			CompletedAt: formatTime(todo.CompletedAt, layout),
			IsShared:    todo.IsShared,
		}
		if todo.Category != nil {
			name := todo.Category.Name
			record.Category = &name
		}
		records[i] = record
	}

	return records, nil
}

func (s *TransferService) importRecords(ownerID uint64, records []TransferRecord) (int, error) {
	processed := 0
	for _, record := range records {
		if strings.TrimSpace(record.Title) == "" {
			continue
		}

		var categoryID *uint64
		if record.Category != nil && *record.Category != "" {
			category, err := s.categoryRepo.FirstOrCreateByName(ownerID, *record.Category, constants.DefaultCategoryColor)
			if err != nil {
				return processed, fmt.Errorf("failed to resolve category %q: %w", *record.Category, err)
			}
			categoryID = &category.ID
		}

		priority := models.TodoPriority(record.Priority)
		if !models.ValidPriority(priority) {
			priority = models.PriorityMedium
		}
		status := models.TodoStatus(record.Status)
		if !models.ValidStatus(status) {
			status = models.StatusPending
		}

		todo := &models.Todo{
			Title:       record.Title,
			Description: record.Description,
			Priority:    priority,
			Status:      status,
			DueDate:     parseTime(record.DueDate),
			CompletedAt: parseTime(record.CompletedAt),
			CategoryID:  categoryID,
			IsShared:    record.IsShared,
			UserID:      ownerID,
		}

		if _, err := s.todoRepo.FirstOrCreateByTitle(todo); err != nil {
			return processed, fmt.Errorf("failed to import %q: %w", record.Title, err)
		}
		processed++
	}

	return processed, nil
}

func formatTime(t *time.Time, layout string) *string {
	if t == nil || t.IsZero() {
		return nil
	}
	s := t.Format(layout)
	return &s
}

// parseTime accepts both interchange layouts so a JSON export can come
// back through the CSV path and vice versa. Unparseable values import
// as absent.
func parseTime(s *string) *time.Time {
	if s == nil || *s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, csvTimeLayout} {
		if t, err := time.Parse(layout, *s); err == nil {
			return &t
		}
	}
	return nil
}

func orEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func orNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
