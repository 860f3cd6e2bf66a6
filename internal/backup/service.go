package backup

import (
	"bufio"
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/N16ht0wl/Electricity-Meter-Measurement-Program/internal/billing"
	"github.com/N16ht0wl/Electricity-Meter-Measurement-Program/internal/ledger"
	"github.com/N16ht0wl/Electricity-Meter-Measurement-Program/internal/models"
)

const (
	FormatJSON = "json"
	FormatBSON = "bson"
)

type Service struct {
	ledger *ledger.Ledger
	log    *logrus.Logger
	now    func() time.Time
}

func NewService(l *ledger.Ledger, log *logrus.Logger) *Service {
	return &Service{ledger: l, log: log, now: time.Now}
}

type Result struct {
	FilePath string
	Count    int
}

// Backup writes every record to a timestamped file in outputDir.
func (s *Service) Backup(ctx context.Context, outputDir, format string) (Result, error) {
	if err := checkFormat(format); err != nil {
		return Result{}, err
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return Result{}, fmt.Errorf("failed to create output directory: %w", err)
	}

	records, err := s.ledger.ListAll(ctx)
	if err != nil {
		return Result{}, err
	}

	timestamp := s.now().Format("20060102_150405")
	filename := fmt.Sprintf("backup_readings_%s.%s", timestamp, format)
	path := filepath.Join(outputDir, filename)

	file, err := os.Create(path)
	if err != nil {
		return Result{}, fmt.Errorf("failed to create backup file: %w", err)
	}

	w := bufio.NewWriter(file)
	if err := Encode(w, records, format); err != nil {
		file.Close()
		os.Remove(path)
		return Result{}, fmt.Errorf("backup failed: %w", err)
	}
	if err := w.Flush(); err != nil {
		file.Close()
		os.Remove(path)
		return Result{}, fmt.Errorf("failed to write backup file: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(path)
		return Result{}, fmt.Errorf("failed to close backup file: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"file":    path,
		"records": len(records),
		"format":  format,
	}).Info("backup completed")

	return Result{FilePath: path, Count: len(records)}, nil
}

// Restore saves every entry of a backup file, overwriting customers
// with the same name. With replace set the ledger is emptied first.
func (s *Service) Restore(ctx context.Context, inputFile, format string, replace bool) (int, error) {
	file, err := os.Open(inputFile)
	if err != nil {
		return 0, fmt.Errorf("failed to open backup file: %w", err)
	}
	defer file.Close()

	rows, err := Decode(bufio.NewReader(file), format)
	if err != nil {
		return 0, fmt.Errorf("restore failed: %w", err)
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })

	readings := make([]billing.Reading, 0, len(rows))
	for i, row := range rows {
		reading, err := billing.ReadingFromFloats(row.Name, row.UnitPrice, row.StartIndex, row.EndIndex, row.Correction)
		if err != nil {
			return 0, fmt.Errorf("restore failed: entry %d (%s): %w", i+1, row.Name, err)
		}
		readings = append(readings, reading)
	}

	count, err := s.ledger.Restore(ctx, readings, replace)
	if err != nil {
		return 0, fmt.Errorf("restore failed: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"file":    inputFile,
		"records": count,
		"replace": replace,
	}).Info("restore completed")

	return count, nil
}

func (s *Service) ValidateBackupFile(filename, expectedFormat string) error {
	file, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("cannot open backup file: %w", err)
	}
	defer file.Close()

	fileInfo, err := file.Stat()
	if err != nil {
		return fmt.Errorf("cannot get file info: %w", err)
	}

	if fileInfo.Size() == 0 {
		return fmt.Errorf("backup file is empty")
	}

	extension := filepath.Ext(filename)
	if expectedFormat == FormatJSON && extension != ".json" {
		return fmt.Errorf("expected JSON file but got %s", extension)
	}
	if expectedFormat == FormatBSON && extension != ".bson" {
		return fmt.Errorf("expected BSON file but got %s", extension)
	}

	return nil
}

// Encode writes one document per record: newline-delimited JSON, or
// concatenated BSON documents.
func Encode(w io.Writer, records []models.CustomerRecord, format string) error {
	if err := checkFormat(format); err != nil {
		return err
	}

	for _, rec := range records {
		row := models.ReadingRow{
			ID:         int64(rec.ID),
			Name:       rec.Name,
			UnitPrice:  rec.UnitPrice.InexactFloat64(),
			StartIndex: rec.StartIndex.InexactFloat64(),
			EndIndex:   rec.EndIndex.InexactFloat64(),
			Correction: rec.Correction.InexactFloat64(),
		}

		var (
			data []byte
			err  error
		)
		if format == FormatJSON {
			data, err = json.Marshal(row)
			if err != nil {
				return fmt.Errorf("failed to marshal to JSON: %w", err)
			}
			data = append(data, '\n')
		} else {
			data, err = bson.Marshal(row)
			if err != nil {
				return fmt.Errorf("failed to marshal to BSON: %w", err)
			}
		}

		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("failed to write backup data: %w", err)
		}
	}
	return nil
}

func Decode(r io.Reader, format string) ([]models.ReadingRow, error) {
	if err := checkFormat(format); err != nil {
		return nil, err
	}

	var rows []models.ReadingRow
	if format == FormatJSON {
		decoder := json.NewDecoder(r)
		for {
			var row models.ReadingRow
			if err := decoder.Decode(&row); err == io.EOF {
				break
			} else if err != nil {
				return nil, fmt.Errorf("failed to decode JSON: %w", err)
			}
			rows = append(rows, row)
		}
		return rows, nil
	}

	var sizeBuf [4]byte
	for {
		if _, err := io.ReadFull(r, sizeBuf[:]); err == io.EOF {
			break
		} else if err != nil {
			return nil, fmt.Errorf("failed to read BSON data: %w", err)
		}

		docSize := int(binary.LittleEndian.Uint32(sizeBuf[:]))
		if docSize < 5 {
			return nil, fmt.Errorf("invalid BSON document size %d", docSize)
		}
		doc := make([]byte, docSize)
		copy(doc, sizeBuf[:])
		if _, err := io.ReadFull(r, doc[4:]); err != nil {
			return nil, fmt.Errorf("failed to read BSON data: %w", err)
		}

		var row models.ReadingRow
		if err := bson.Unmarshal(doc, &row); err != nil {
			return nil, fmt.Errorf("failed to unmarshal BSON: %w", err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// FormatFromExtension guesses the backup format from a file name.
func FormatFromExtension(filename string) (string, error) {
	switch filepath.Ext(filename) {
	case ".json":
		return FormatJSON, nil
	case ".bson":
		return FormatBSON, nil
	}
	return "", fmt.Errorf("cannot auto-detect format from extension '%s'. Please specify --format", filepath.Ext(filename))
}

func checkFormat(format string) error {
	if format != FormatJSON && format != FormatBSON {
		return fmt.Errorf("invalid format: %s. Use 'bson' or 'json'", format)
	}
	return nil
}
