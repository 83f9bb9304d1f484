package excel

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/example/certifai/pkg/models"
)

// ImportConfig describes where the topics live in the spreadsheet
type ImportConfig struct {
	FilePath     string // Path to the Excel or CSV file
	ModuloColumn string // Column with the module name
	ProvaColumn  string // Column with the exam id
	SheetName    string // Name of the sheet to import
	StartRow     int    // The row to start importing from (1-based index)
}

// DefaultImportConfig returns the default import configuration
func DefaultImportConfig() ImportConfig {
	return ImportConfig{
		ModuloColumn: "A",
		ProvaColumn:  "B",
		SheetName:    "Sheet1",
		StartRow:     2, // By default, start from the second row (skip header)
	}
}

// Source serves the topic list from a spreadsheet kept next to the app.
// The file is read on every fetch so edits show up on the next refresh.
type Source struct {
	config ImportConfig
}

// NewSource creates a spreadsheet topic source
func NewSource(config ImportConfig) *Source {
	if config.ModuloColumn == "" {
		config.ModuloColumn = "A"
	}
	if config.ProvaColumn == "" {
		config.ProvaColumn = "B"
	}
	if config.StartRow < 1 {
		config.StartRow = 1
	}
	return &Source{config: config}
}

// FetchTopics reads every topic row of the file
func (s *Source) FetchTopics(ctx context.Context) ([]models.Topic, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.ToLower(filepath.Ext(s.config.FilePath)) == ".csv" {
		rows, err := readCSVRows(s.config)
		if err != nil {
			return nil, err
		}
		return collectTopics(rows, s.config), nil
	}
	return importFromExcel(s.config)
}

// importFromExcel reads topics from an Excel file
func importFromExcel(config ImportConfig) ([]models.Topic, error) {
	f, err := excelize.OpenFile(config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheet := config.SheetName
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}
	return collectTopics(rows, config), nil
}

// readCSVRows reads every record of a CSV file
func readCSVRows(config ImportConfig) ([][]string, error) {
	file, err := os.Open(config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // Allow variable number of fields
	reader.LazyQuotes = true

	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV: %w", err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// collectTopics turns sheet rows into topics.
// A row with a module but no exam id inherits the exam of the closest row above that had one.
func collectTopics(rows [][]string, config ImportConfig) []models.Topic {
	moduloIdx := columnToIndex(config.ModuloColumn)
	provaIdx := columnToIndex(config.ProvaColumn)

	topics := []models.Topic{}
	currentProva := ""
	for i, row := range rows {
		// Skip header rows
		if i < config.StartRow-1 {
			continue
		}
		modulo := cell(row, moduloIdx)
		prova := cell(row, provaIdx)
		if prova != "" {
			currentProva = prova
		}
		if modulo == "" {
			continue
		}
		topics = append(topics, models.Topic{Modulo: modulo, Prova: currentProva})
	}
	return topics
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// columnToIndex converts an Excel column letter to a 0-based index
func columnToIndex(column string) int {
	column = strings.ToUpper(strings.TrimSpace(column))
	if column == "" {
		return -1
	}
	result := 0
	for _, char := range column {
		if char < 'A' || char > 'Z' {
			return -1
		}
		result = result*26 + int(char-'A'+1)
	}
	return result - 1
}
