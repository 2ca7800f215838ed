package importer

import (
	"strings"

	"college-portal-api/models"
)

func directoryRow(cm ColumnMap) func(RawRow) (models.DirectoryEntry, bool) {
	return func(row RawRow) (models.DirectoryEntry, bool) {
		entry := models.DirectoryEntry{
			Name:        collapseSpaces(cm.Text(row, FieldName)),
			Department:  collapseSpaces(cm.Text(row, FieldDepartment)),
			Designation: collapseSpaces(cm.Text(row, FieldDesignation)),
			Email:       strings.ToLower(cm.Text(row, FieldEmail)),
			Phone:       cm.Text(row, FieldPhone),
		}
		if entry.Name == "" || !strings.Contains(entry.Email, "@") {
			return models.DirectoryEntry{}, false
		}
		return entry, true
	}
}

func studentRow(cm ColumnMap) func(RawRow) (models.Student, bool) {
	return func(row RawRow) (models.Student, bool) {
		student := models.Student{
			AdmNo:  strings.ToUpper(strings.ReplaceAll(cm.Text(row, FieldAdmNo), " ", "")),
			Name:   collapseSpaces(cm.Text(row, FieldName)),
			Email:  strings.ToLower(cm.Text(row, FieldEmail)),
			Phone:  cm.Text(row, FieldPhone),
			Branch: collapseSpaces(cm.Text(row, FieldBranch)),
			Batch:  cm.Text(row, FieldBatch),
		}
		if student.AdmNo == "" || student.Name == "" {
			return models.Student{}, false
		}
		return student, true
	}
}

func directoryKey(d models.DirectoryEntry) string { return strings.ToLower(d.Email) }

func studentKey(s models.Student) string { return strings.ToUpper(s.AdmNo) }
