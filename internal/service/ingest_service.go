package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/qainatsaeed/BlackBox-LLM/internal/dto"
	"github.com/qainatsaeed/BlackBox-LLM/internal/entity"
	"github.com/qainatsaeed/BlackBox-LLM/internal/pkg/logger"
	"github.com/qainatsaeed/BlackBox-LLM/internal/repository/contract"
	"github.com/qainatsaeed/BlackBox-LLM/pkg/embedding"
	"github.com/qainatsaeed/BlackBox-LLM/pkg/events"
	pkgNats "github.com/qainatsaeed/BlackBox-LLM/pkg/nats"
	"github.com/qainatsaeed/BlackBox-LLM/pkg/utils"
)

const (
	chunkSize    = 1000
	chunkOverlap = 100
)

type IIngestService interface {
	IngestCSV(ctx context.Context, req *dto.IngestCSVRequest) (*dto.IngestResponse, error)
	IngestSQL(ctx context.Context, req *dto.IngestSQLRequest) (*dto.IngestResponse, error)
	IndexDocument(ctx context.Context, doc DocumentInput) (*dto.IngestResponse, error)
}

// DocumentInput is one free-text document to chunk, embed and index.
type DocumentInput struct {
	SourceID     string
	AccountID    string
	LocationID   string
	EmployeeCode string
	DataType     string
	Text         string
}

// RosterCache is notified when ingestion rewrites an account's employee
// roster, so cached team lookups do not outlive the data they came from.
type RosterCache interface {
	Invalidate(accountID string)
}

type ingestService struct {
	db             *gorm.DB
	employees      contract.EmployeeRepository
	shifts         contract.ShiftRepository
	sales          contract.SaleRepository
	embeddings     contract.DocumentEmbeddingRepository
	embedder       embedding.Provider
	eventPublisher *pkgNats.Publisher
	rosterCache    RosterCache // optional
	log            logger.ILogger
}

func NewIngestService(
	db *gorm.DB,
	employees contract.EmployeeRepository,
	shifts contract.ShiftRepository,
	sales contract.SaleRepository,
	embeddings contract.DocumentEmbeddingRepository,
	embedder embedding.Provider,
	eventPublisher *pkgNats.Publisher,
	rosterCache RosterCache,
	log logger.ILogger,
) IIngestService {
	return &ingestService{
		db:             db,
		employees:      employees,
		shifts:         shifts,
		sales:          sales,
		embeddings:     embeddings,
		embedder:       embedder,
		eventPublisher: eventPublisher,
		rosterCache:    rosterCache,
		log:            log,
	}
}

// IngestCSV loads one CSV file of shifts, sales or documents. The first row
// is a header; column order follows it.
func (s *ingestService) IngestCSV(ctx context.Context, req *dto.IngestCSVRequest) (*dto.IngestResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	file, err := os.Open(req.FilePath)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}

	var resp *dto.IngestResponse
	switch req.DataType {
	case "shift":
		resp, err = s.ingestShifts(ctx, reader, columns)
	case "sale":
		resp, err = s.ingestSales(ctx, reader, columns)
	case "document":
		resp, err = s.ingestDocuments(ctx, reader, columns)
	default:
		return nil, fmt.Errorf("unsupported data type: %s", req.DataType)
	}
	if err != nil {
		return nil, err
	}

	s.publishIngested(ctx, req.DataType, resp.RecordsIngested+resp.DocumentsIndexed)
	return resp, nil
}

func (s *ingestService) ingestShifts(ctx context.Context, reader *csv.Reader, columns map[string]int) (*dto.IngestResponse, error) {
	var shifts []*entity.Shift
	var employeesSeen = map[string]*entity.Employee{}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}

		cell := cellReader(record, columns)
		date, err := time.Parse("2006-01-02", cell("date"))
		if err != nil {
			return nil, fmt.Errorf("row %v: bad date: %w", record, err)
		}

		code := strings.ToLower(cell("employee_code"))
		shifts = append(shifts, &entity.Shift{
			Id:             uuid.New(),
			EmployeeCode:   code,
			EmployeeName:   cell("employee_name"),
			Position:       cell("position"),
			Department:     cell("department"),
			AccountID:      cell("account_id"),
			LocationID:     strings.ToLower(cell("location_id")),
			Date:           date,
			StartTime:      cell("start_time"),
			EndTime:        cell("end_time"),
			ScheduledHours: parseFloat(cell("scheduled_hours")),
			AttendedHours:  parseFloat(cell("attended_hours")),
			CreatedAt:      time.Now(),
		})

		if code != "" {
			if _, ok := employeesSeen[code]; !ok {
				employeesSeen[code] = &entity.Employee{
					Id:             uuid.New(),
					Code:           code,
					Name:           cell("employee_name"),
					Position:       cell("position"),
					HourlyRate:     parseFloat(cell("hourly_rate")),
					AccountID:      cell("account_id"),
					LocationID:     strings.ToLower(cell("location_id")),
					SupervisorCode: strings.ToLower(cell("supervisor_code")),
					CreatedAt:      time.Now(),
				}
			}
		}
	}

	if len(shifts) > 0 {
		if err := s.shifts.CreateBulk(ctx, shifts); err != nil {
			return nil, fmt.Errorf("store shifts: %w", err)
		}
	}
	if len(employeesSeen) > 0 {
		roster := make([]*entity.Employee, 0, len(employeesSeen))
		accounts := map[string]bool{}
		for _, emp := range employeesSeen {
			roster = append(roster, emp)
			if emp.AccountID != "" {
				accounts[emp.AccountID] = true
			}
		}
		if err := s.employees.CreateBulk(ctx, roster); err != nil {
			return nil, fmt.Errorf("store employees: %w", err)
		}
		if s.rosterCache != nil {
			for account := range accounts {
				s.rosterCache.Invalidate(account)
			}
		}
	}

	return &dto.IngestResponse{Success: true, RecordsIngested: len(shifts)}, nil
}

func (s *ingestService) ingestSales(ctx context.Context, reader *csv.Reader, columns map[string]int) (*dto.IngestResponse, error) {
	var sales []*entity.Sale

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}

		cell := cellReader(record, columns)
		date, err := time.Parse("2006-01-02", cell("date"))
		if err != nil {
			return nil, fmt.Errorf("row %v: bad date: %w", record, err)
		}

		sales = append(sales, &entity.Sale{
			Id:           uuid.New(),
			AccountID:    cell("account_id"),
			LocationID:   strings.ToLower(cell("location_id")),
			EmployeeCode: strings.ToLower(cell("employee_code")),
			Date:         date,
			Amount:       parseFloat(cell("amount")),
			Category:     cell("category"),
			CreatedAt:    time.Now(),
		})
	}

	if len(sales) > 0 {
		if err := s.sales.CreateBulk(ctx, sales); err != nil {
			return nil, fmt.Errorf("store sales: %w", err)
		}
	}

	return &dto.IngestResponse{Success: true, RecordsIngested: len(sales)}, nil
}

func (s *ingestService) ingestDocuments(ctx context.Context, reader *csv.Reader, columns map[string]int) (*dto.IngestResponse, error) {
	indexed := 0
	failures := 0

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}

		cell := cellReader(record, columns)
		resp, err := s.IndexDocument(ctx, DocumentInput{
			SourceID:     cell("source_id"),
			AccountID:    cell("account_id"),
			LocationID:   strings.ToLower(cell("location_id")),
			EmployeeCode: strings.ToLower(cell("employee_code")),
			DataType:     cell("data_type"),
			Text:         cell("text"),
		})
		if err != nil {
			failures++
			s.log.Warn("ingest", "document indexing failed", map[string]interface{}{
				"source_id": cell("source_id"),
				"error":     err.Error(),
			})
			continue
		}
		indexed += resp.DocumentsIndexed
	}

	return &dto.IngestResponse{
		Success:           failures == 0,
		DocumentsIndexed:  indexed,
		EmbeddingFailures: failures,
	}, nil
}

// IndexDocument chunks one document, embeds every chunk and stores the
// vectors. Re-indexing a source id replaces its previous chunks.
func (s *ingestService) IndexDocument(ctx context.Context, doc DocumentInput) (*dto.IngestResponse, error) {
	if strings.TrimSpace(doc.Text) == "" {
		return &dto.IngestResponse{Success: true}, nil
	}
	if doc.SourceID == "" {
		doc.SourceID = uuid.NewString()
	}

	if err := s.embeddings.DeleteBySourceId(ctx, doc.SourceID); err != nil {
		return nil, fmt.Errorf("clear previous chunks: %w", err)
	}

	chunks := utils.SplitText(doc.Text, chunkSize, chunkOverlap)
	rows := make([]*entity.DocumentEmbedding, 0, len(chunks))
	for i, chunk := range chunks {
		vector, err := s.embedder.Generate(ctx, chunk, embedding.TaskRetrievalDocument)
		if err != nil {
			return nil, fmt.Errorf("embed chunk %d: %w", i, err)
		}
		rows = append(rows, &entity.DocumentEmbedding{
			Id:             uuid.New(),
			Document:       chunk,
			EmbeddingValue: vector,
			SourceID:       doc.SourceID,
			AccountID:      doc.AccountID,
			LocationID:     doc.LocationID,
			EmployeeCode:   doc.EmployeeCode,
			DataType:       doc.DataType,
			ChunkIndex:     i,
			CreatedAt:      time.Now(),
		})
	}

	if err := s.embeddings.CreateBulk(ctx, rows); err != nil {
		return nil, fmt.Errorf("store chunks: %w", err)
	}

	return &dto.IngestResponse{Success: true, DocumentsIndexed: len(rows)}, nil
}

// IngestSQL runs a read-only query and indexes each result row as one
// document, rendered as "column: value" lines.
func (s *ingestService) IngestSQL(ctx context.Context, req *dto.IngestSQLRequest) (*dto.IngestResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	trimmed := strings.TrimSpace(strings.ToLower(req.Query))
	if !strings.HasPrefix(trimmed, "select") {
		return nil, fmt.Errorf("only select statements can be ingested")
	}

	rows, err := s.db.WithContext(ctx).Raw(req.Query).Rows()
	if err != nil {
		return nil, fmt.Errorf("run ingest query: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read result columns: %w", err)
	}

	indexed := 0
	failures := 0
	rowNum := 0
	for rows.Next() {
		values := make([]interface{}, len(columns))
		pointers := make([]interface{}, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, fmt.Errorf("scan result row: %w", err)
		}

		var b strings.Builder
		for i, col := range columns {
			if i > 0 {
				b.WriteString("\n")
			}
			fmt.Fprintf(&b, "%s: %v", col, renderValue(values[i]))
		}

		rowNum++
		resp, err := s.IndexDocument(ctx, DocumentInput{
			SourceID: fmt.Sprintf("sql:%s", uuid.NewString()),
			DataType: "public",
			Text:     b.String(),
		})
		if err != nil {
			failures++
			continue
		}
		indexed += resp.DocumentsIndexed
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate result rows: %w", err)
	}

	s.publishIngested(ctx, "sql", indexed)
	return &dto.IngestResponse{
		Success:           failures == 0,
		RecordsIngested:   rowNum,
		DocumentsIndexed:  indexed,
		EmbeddingFailures: failures,
	}, nil
}

func (s *ingestService) publishIngested(ctx context.Context, dataType string, records int) {
	if s.eventPublisher == nil {
		return
	}
	event := events.NewDataIngested("", dataType, records)
	if err := s.eventPublisher.Publish(ctx, event); err != nil {
		s.log.Warn("ingest", "event publish failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

// cellReader resolves named columns against one record, empty when absent.
func cellReader(record []string, columns map[string]int) func(string) string {
	return func(name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}
}

func parseFloat(s string) float64 {
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

func renderValue(v interface{}) interface{} {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}
