package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/signintech/gopdf"

	"symptom-checker/internal/diagnosis"
)

// Common DejaVuSans locations across base images.
var fontPaths = []string{
	"/usr/share/fonts/ttf-dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
}

// Service renders a concluded diagnosis as a PDF document.
type Service struct{}

func NewService() *Service {
	return &Service{}
}

func (s *Service) Render(sessionID string, result diagnosis.Result) ([]byte, error) {
	pdf := gopdf.GoPdf{}
	pdf.Start(gopdf.Config{PageSize: *gopdf.PageSizeA4})
	pdf.AddPage()

	var fontErr error
	fontLoaded := false
	for _, path := range fontPaths {
		if err := pdf.AddTTFFont("DejaVu", path); err == nil {
			fontLoaded = true
			break
		} else {
			fontErr = err
		}
	}
	if !fontLoaded {
		return nil, fmt.Errorf("failed to load font for PDF, ensure ttf-dejavu is installed: %w", fontErr)
	}

	if err := pdf.SetFont("DejaVu", "", 20); err != nil {
		return nil, err
	}
	pdf.Cell(nil, "Diagnosis Report")
	pdf.Br(30)

	if err := pdf.SetFont("DejaVu", "", 12); err != nil {
		return nil, err
	}
	pdf.Cell(nil, fmt.Sprintf("Date: %s", time.Now().Format("02.01.2006 15:04")))
	pdf.Br(15)
	pdf.Cell(nil, fmt.Sprintf("Session ID: %s", sessionID))
	pdf.Br(25)

	if err := pdf.SetFont("DejaVu", "", 14); err != nil {
		return nil, err
	}
	pdf.Cell(nil, "Outcome:")
	pdf.Br(15)

	if err := pdf.SetFont("DejaVu", "", 11); err != nil {
		return nil, err
	}
	if result.Disease == nil {
		lines, _ := pdf.SplitText(result.Note, 500)
		for _, l := range lines {
			pdf.Cell(nil, l)
			pdf.Br(12)
		}
	} else {
		pdf.Cell(nil, fmt.Sprintf("%s (%s)", result.Disease.Name, result.Disease.Code))
		pdf.Br(12)
		if result.Confidence != nil {
			pdf.Cell(nil, fmt.Sprintf("Confidence: %d%%", *result.Confidence))
			pdf.Br(12)
		}
		if result.Disease.Description != "" {
			lines, _ := pdf.SplitText(result.Disease.Description, 500)
			for _, l := range lines {
				pdf.Cell(nil, l)
				pdf.Br(12)
			}
		}
		pdf.Br(10)

		if err := pdf.SetFont("DejaVu", "", 14); err != nil {
			return nil, err
		}
		pdf.Cell(nil, "Matched symptoms:")
		pdf.Br(15)

		if err := pdf.SetFont("DejaVu", "", 11); err != nil {
			return nil, err
		}
		if len(result.MatchedSymptoms) == 0 {
			pdf.Cell(nil, "- None recorded.")
			pdf.Br(12)
		}
		for _, sym := range result.MatchedSymptoms {
			line := fmt.Sprintf("- [%s] %s", sym.Code, sym.Question)
			lines, _ := pdf.SplitText(line, 500)
			for _, l := range lines {
				pdf.Cell(nil, l)
				pdf.Br(12)
			}
		}
	}

	pdf.SetY(270)
	if err := pdf.SetFont("DejaVu", "", 9); err != nil {
		return nil, err
	}
	pdf.Cell(nil, "Automated screening result, not a medical diagnosis.")

	var buf bytes.Buffer
	if _, err := pdf.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write PDF: %w", err)
	}
	return buf.Bytes(), nil
}
