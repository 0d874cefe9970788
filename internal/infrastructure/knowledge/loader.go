package knowledge

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/airndlab/support-qna/internal/core/domain"
)

// Workbook column headers, as the support team maintains them.
const (
	ColBaseQuestion = "Вопрос из БЗ"
	ColCaseQuestion = "Вопрос пользователя"
	ColAnswer       = "Ответ из БЗ"
	ColClass1       = "Классификатор 1 уровня"
	ColClass2       = "Классификатор 2 уровня"
)

// LoadWorkbook reads knowledge entries from the first sheet of an .xlsx
// file. questionColumn selects the question header («Вопрос из БЗ» for
// the knowledge base, «Вопрос пользователя» for case files); columns the
// loader does not know, such as «Тема», are ignored. Rows without a
// question or an answer are skipped.
func LoadWorkbook(path, questionColumn string) ([]domain.KnowledgeEntry, error) {
	file, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer file.Close()

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook %s has no sheets", path)
	}

	rows, err := file.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("workbook %s is empty", path)
	}

	columns := headerIndex(rows[0])
	questionIdx, ok := columns[questionColumn]
	if !ok {
		return nil, fmt.Errorf("workbook %s: column %q not found", path, questionColumn)
	}
	answerIdx, ok := columns[ColAnswer]
	if !ok {
		return nil, fmt.Errorf("workbook %s: column %q not found", path, ColAnswer)
	}
	class1Idx := columnOr(columns, ColClass1, -1)
	class2Idx := columnOr(columns, ColClass2, -1)

	entries := make([]domain.KnowledgeEntry, 0, len(rows)-1)
	for _, row := range rows[1:] {
		question := cell(row, questionIdx)
		answer := cell(row, answerIdx)
		if question == "" || answer == "" {
			continue
		}
		entries = append(entries, domain.KnowledgeEntry{
			Question: question,
			Answer:   answer,
			Class1:   cell(row, class1Idx),
			Class2:   cell(row, class2Idx),
		})
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("workbook %s: no usable rows", path)
	}
	return entries, nil
}

// LoadSynonyms reads the lemma→replacement substitution table.
func LoadSynonyms(path string) (map[string]string, error) {
	if path == "" {
		return map[string]string{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read synonyms %s: %w", path, err)
	}
	var table map[string]string
	if err := json.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("parse synonyms %s: %w", path, err)
	}
	return table, nil
}

func headerIndex(header []string) map[string]int {
	out := make(map[string]int, len(header))
	for i, name := range header {
		out[strings.TrimSpace(name)] = i
	}
	return out
}

func columnOr(columns map[string]int, name string, fallback int) int {
	if idx, ok := columns[name]; ok {
		return idx
	}
	return fallback
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
