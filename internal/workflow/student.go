package workflow

import (
	"context"
	"strings"

	"github.com/paperdesk/paperdesk/internal/logger"
	"github.com/paperdesk/paperdesk/internal/model"
)

// StudentDashboard drives the student screen: browsing and searching the
// full paper list.
type StudentDashboard struct {
	api    PaperAPI
	logger *logger.Logger

	all     []model.Paper
	results []model.Paper
}

// NewStudentDashboard creates the student dashboard flow.
func NewStudentDashboard(api PaperAPI, logger *logger.Logger) *StudentDashboard {
	return &StudentDashboard{api: api, logger: logger}
}

// Load fetches the full paper list and shows it as the current results.
func (d *StudentDashboard) Load(ctx context.Context) ([]model.Paper, error) {
	papers, err := d.api.AllPapers(ctx)
	if err != nil {
		return nil, err
	}

	d.all = papers
	d.results = papers
	return papers, nil
}

// Search filters the results by keyword on the server. Clearing the keyword
// resets to the cached full list without another round trip.
func (d *StudentDashboard) Search(ctx context.Context, keyword string) ([]model.Paper, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		d.results = d.all
		return d.results, nil
	}

	papers, err := d.api.SearchPapers(ctx, keyword)
	if err != nil {
		return nil, err
	}

	d.results = papers
	return papers, nil
}

// Results returns the currently shown list.
func (d *StudentDashboard) Results() []model.Paper {
	return d.results
}
