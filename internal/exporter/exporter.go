// Package exporter finalizes an analysis session: it applies accepted
// resume changes to the submitted sections, renders a markdown document
// and uploads it to blob storage.
package exporter

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"folio-api/internal/config"
	"folio-api/internal/logging"
	"folio-api/pkg/models"
	"folio-api/pkg/utils"
)

// Sentinel errors to allow precise mapping in handlers
var (
	ErrRender        = errors.New("render_error")
	ErrStorageConfig = errors.New("storage_configuration")
	ErrUpload        = errors.New("upload_failed")
)

// ApplyChanges returns a copy of the sections with the accepted changes
// applied. An edited text overrides the proposed modified text. A change
// whose original text is absent from its target section is skipped rather
// than corrupting the document.
func ApplyChanges(sections []models.ResumeSection, changes []models.ProposedChange, acceptedIndices []int, editedTexts map[int]string) []models.ResumeSection {
	out := make([]models.ResumeSection, len(sections))
	copy(out, sections)

	byPath := make(map[string]int, len(out))
	for i, section := range out {
		byPath[section.Path] = i
	}

	for _, idx := range acceptedIndices {
		if idx < 0 || idx >= len(changes) {
			continue
		}
		change := changes[idx]

		sectionIdx, ok := byPath[change.Section]
		if !ok {
			continue
		}

		replacement := change.Modified
		if edited, ok := editedTexts[idx]; ok {
			replacement = edited
		}

		text := out[sectionIdx].Text
		if change.Original == "" || !strings.Contains(text, change.Original) {
			continue
		}
		out[sectionIdx].Text = strings.Replace(text, change.Original, replacement, 1)
	}

	return out
}

// RenderMarkdown renders resume sections into a markdown document
func RenderMarkdown(resumeID string, sections []models.ResumeSection) (string, error) {
	if len(sections) == 0 {
		return "", fmt.Errorf("resume %s has no sections", resumeID)
	}

	var b strings.Builder
	for i, section := range sections {
		title := section.Title
		if title == "" {
			title = section.Path
		}
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "## %s\n\n%s\n", title, strings.TrimSpace(section.Text))
	}

	return b.String(), nil
}

// ExportResume applies the accepted changes, renders the document and
// uploads it to blob storage. Returns the public URL of the uploaded file.
func ExportResume(_ context.Context, cfg *config.Config, request models.GenerateResumeRequest) (string, error) {
	logger := logging.GetGlobalLogger()

	sections := ApplyChanges(request.Sections, request.Analysis.ProposedChanges, request.AcceptedIndices, request.EditedTexts)

	document, err := RenderMarkdown(request.ResumeID, sections)
	if err != nil {
		logger.Error("Failed to render resume document", map[string]interface{}{
			"resume_id": request.ResumeID,
			"error":     err.Error(),
		})
		return "", fmt.Errorf("%w: %v", ErrRender, err)
	}

	spaces, err := utils.NewSpacesClient(cfg)
	if err != nil {
		logger.Error("Storage not configured for export", map[string]interface{}{
			"resume_id": request.ResumeID,
			"error":     err.Error(),
		})
		return "", fmt.Errorf("%w: %v", ErrStorageConfig, err)
	}

	key := fmt.Sprintf("exports/%s/%d.md", request.ResumeID, time.Now().UTC().UnixNano())
	url, err := spaces.PutPublicObject(key, []byte(document), "text/markdown")
	if err != nil {
		logger.Error("Failed to upload resume export", map[string]interface{}{
			"resume_id": request.ResumeID,
			"key":       key,
			"error":     err.Error(),
		})
		return "", fmt.Errorf("%w: %v", ErrUpload, err)
	}

	return url, nil
}
