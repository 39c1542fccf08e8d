package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/waypoint/internal/contract"
	"github.com/alexanderramin/waypoint/internal/db"
	"github.com/alexanderramin/waypoint/internal/domain"
	"github.com/alexanderramin/waypoint/internal/repository"
	tmpl "github.com/alexanderramin/waypoint/internal/template"
)

type templateService struct {
	templates     repository.TemplateRepo
	templateItems repository.TemplateItemRepo
	projects      repository.ProjectRepo
	timeline      repository.TimelineItemRepo
	uow           db.UnitOfWork
	opts          Options
	observer      UseCaseObserver
}

func NewTemplateService(
	templates repository.TemplateRepo,
	templateItems repository.TemplateItemRepo,
	projects repository.ProjectRepo,
	timeline repository.TimelineItemRepo,
	uow db.UnitOfWork,
	opts Options,
	observers ...UseCaseObserver,
) TemplateService {
	return &templateService{
		templates:     templates,
		templateItems: templateItems,
		projects:      projects,
		timeline:      timeline,
		uow:           uow,
		opts:          opts.withDefaults(),
		observer:      useCaseObserverOrNoop(observers),
	}
}

func (s *templateService) Apply(ctx context.Context, req contract.ApplyTemplateRequest) (result *contract.ApplyTemplateResult, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{
		"project_id":  req.ProjectID,
		"template_id": req.TemplateID,
	}
	defer func() {
		if result != nil {
			fields["deleted"] = result.Deleted
			fields["created"] = len(result.Created)
			fields["parents_linked"] = result.ParentsLinked
			fields["batch"] = result.Batch.String()
		}
		observeUseCase(ctx, s.observer, "apply-template", startedAt, err, fields)
	}()

	if strings.TrimSpace(req.TemplateID) == "" {
		return nil, fmt.Errorf("%w: template ID is required", ErrValidation)
	}
	if _, err = s.templates.GetByID(ctx, req.TemplateID); err != nil {
		return nil, fmt.Errorf("loading template: %w", err)
	}
	var items []*domain.TimelineTemplateItem
	items, err = s.templateItems.ListByTemplate(ctx, req.TemplateID)
	if err != nil {
		return nil, fmt.Errorf("loading template items: %w", err)
	}
	if len(items) == 0 {
		return nil, ErrEmptyTemplate
	}
	var project *domain.Project
	project, err = s.projects.GetByID(ctx, req.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("loading project: %w", err)
	}
	var existing []*domain.TimelineItem
	existing, err = s.timeline.ListByProject(ctx, req.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("loading timeline: %w", err)
	}
	if len(existing) > 0 && !req.ConfirmReplace {
		return nil, fmt.Errorf("%w (%d items)", ErrReplaceNotConfirmed, len(existing))
	}

	result = &contract.ApplyTemplateResult{}
	ids := make([]string, len(existing))
	for i, it := range existing {
		ids[i] = it.ID
	}
	var deleteBatch contract.BatchResult
	result.Deleted, deleteBatch, err = removeAll(ctx, ids, s.timeline.Delete, s.opts.Concurrency)
	result.Batch = deleteBatch
	if err != nil {
		return result, fmt.Errorf("clearing timeline (%s): %w", deleteBatch, err)
	}

	now := s.opts.Now()
	if req.Now != nil {
		now = *req.Now
	}
	steps := tmpl.PlanInstantiation(project.ID, project.AnchorDate(now), items)

	copied, err := copyTree(ctx, steps, treeWriter[*domain.TimelineItem]{
		create:    s.timeline.Create,
		idOf:      func(it *domain.TimelineItem) string { return it.ID },
		setParent: s.timeline.SetParent,
		linked: func(it *domain.TimelineItem, parentID string) {
			it.ParentID = &parentID
		},
	}, s.opts.Concurrency)
	result.Created = copied.Created
	result.ParentsLinked = copied.ParentsLinked
	result.Batch = result.Batch.Merge(copied.Batch)
	if err != nil {
		return result, fmt.Errorf("instantiating template (%s): %w", result.Batch, err)
	}
	return result, nil
}

func (s *templateService) CreateFromTimeline(ctx context.Context, req contract.CreateTemplateRequest) (result *contract.CreateTemplateResult, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{
		"project_id": req.ProjectID,
		"name":       req.Meta.Name,
		"items":      len(req.Items),
	}
	defer func() {
		if result != nil {
			fields["parents_linked"] = result.ParentsLinked
			fields["batch"] = result.Batch.String()
		}
		observeUseCase(ctx, s.observer, "save-timeline-as-template", startedAt, err, fields)
	}()

	if len(req.Items) == 0 {
		return nil, ErrEmptyTimeline
	}
	name := strings.TrimSpace(req.Meta.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: template name is required", ErrValidation)
	}
	var project *domain.Project
	project, err = s.projects.GetByID(ctx, req.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("loading project: %w", err)
	}

	header := &domain.TimelineTemplate{
		Name:        name,
		Description: req.Meta.Description,
		Category:    req.Meta.Category,
		Color:       req.Meta.Color,
		Active:      true,
	}
	if err = s.templates.Create(ctx, header); err != nil {
		return nil, fmt.Errorf("creating template: %w", err)
	}
	result = &contract.CreateTemplateResult{Template: header}

	now := s.opts.Now()
	if req.Now != nil {
		now = *req.Now
	}
	steps := tmpl.PlanCollapse(header.ID, project.AnchorDate(now), req.Items)

	copied, err := copyTree(ctx, steps, s.templateItemWriter(s.templateItems), s.opts.Concurrency)
	result.Items = copied.Created
	result.ParentsLinked = copied.ParentsLinked
	result.Batch = copied.Batch
	if err != nil {
		return result, fmt.Errorf("copying timeline into template (%s): %w", result.Batch, err)
	}
	return result, nil
}

func (s *templateService) templateItemWriter(items repository.TemplateItemRepo) treeWriter[*domain.TimelineTemplateItem] {
	return treeWriter[*domain.TimelineTemplateItem]{
		create:    items.Create,
		idOf:      func(it *domain.TimelineTemplateItem) string { return it.ID },
		setParent: items.SetParent,
		linked: func(it *domain.TimelineTemplateItem, parentID string) {
			it.ParentID = &parentID
		},
	}
}

func (s *templateService) List(ctx context.Context, activeOnly bool) ([]*domain.TimelineTemplate, error) {
	templates, err := s.templates.List(ctx, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("listing templates: %w", err)
	}
	return templates, nil
}

func (s *templateService) Get(ctx context.Context, id string) (*contract.TemplateDetail, error) {
	t, err := s.templates.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	items, err := s.templateItems.ListByTemplate(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading template items: %w", err)
	}
	return &contract.TemplateDetail{Template: t, Items: items}, nil
}

func (s *templateService) Resolve(ctx context.Context, ref string) (*domain.TimelineTemplate, error) {
	input := strings.TrimSpace(ref)
	if input == "" {
		return nil, fmt.Errorf("%w: template reference is empty", ErrValidation)
	}

	t, err := s.templates.GetByID(ctx, input)
	if err == nil {
		return t, nil
	}
	if !isNotFound(err) {
		return nil, err
	}

	all, err := s.templates.List(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("listing templates: %w", err)
	}
	for _, t := range all {
		if strings.EqualFold(t.Name, input) {
			return t, nil
		}
	}

	// Resolve by integer selector from `template list`.
	if n, err := strconv.Atoi(input); err == nil && n >= 1 && n <= len(all) {
		return all[n-1], nil
	}
	return nil, fmt.Errorf("template %q: %w", ref, repository.ErrNotFound)
}

func (s *templateService) SetActive(ctx context.Context, id string, active bool) error {
	if err := s.templates.SetActive(ctx, id, active); err != nil {
		return fmt.Errorf("setting template active=%t: %w", active, err)
	}
	return nil
}

func (s *templateService) Import(ctx context.Context, doc *tmpl.Document) (detail *contract.TemplateDetail, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{}
	defer func() {
		if detail != nil {
			fields["template_id"] = detail.Template.ID
			fields["items"] = len(detail.Items)
		}
		observeUseCase(ctx, s.observer, "import-template", startedAt, err, fields)
	}()

	if doc == nil {
		return nil, fmt.Errorf("%w: no template document", ErrValidation)
	}
	fields["name"] = doc.Name

	header, steps, err := tmpl.BuildFromDocument(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	var copied treeCopy[*domain.TimelineTemplateItem]
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txTemplates := repository.NewSQLiteTemplateRepo(tx)
		txItems := repository.NewSQLiteTemplateItemRepo(tx)

		if err := txTemplates.Create(ctx, header); err != nil {
			return fmt.Errorf("creating template: %w", err)
		}
		for _, st := range steps {
			st.Record.TemplateID = header.ID
		}
		var err error
		// One statement at a time inside a transaction.
		copied, err = copyTree(ctx, steps, s.templateItemWriter(txItems), 1)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("importing template %q: %w", doc.Name, err)
	}
	return &contract.TemplateDetail{Template: header, Items: copied.Created}, nil
}

func (s *templateService) ImportDir(ctx context.Context, dir string) ([]*contract.TemplateDetail, error) {
	files, err := templateFiles(dir)
	if err != nil {
		return nil, err
	}

	existing, err := s.templates.List(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("listing templates: %w", err)
	}
	taken := make(map[string]bool, len(existing))
	for _, t := range existing {
		taken[strings.ToLower(t.Name)] = true
	}

	var imported []*contract.TemplateDetail
	var errs []error
	for _, file := range files {
		doc, err := tmpl.LoadDocument(file)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", filepath.Base(file), err))
			continue
		}
		key := strings.ToLower(strings.TrimSpace(doc.Name))
		if taken[key] {
			continue
		}
		detail, err := s.Import(ctx, doc)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", filepath.Base(file), err))
			continue
		}
		taken[key] = true
		imported = append(imported, detail)
	}
	return imported, errors.Join(errs...)
}

func templateFiles(dir string) ([]string, error) {
	var files []string
	for _, pattern := range []string{"*.yaml", "*.yml", "*.json"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, err
		}
		files = append(files, matches...)
	}
	sort.Strings(files)
	return files, nil
}

func (s *templateService) Export(ctx context.Context, id string) (*tmpl.Document, error) {
	detail, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return tmpl.DocumentFromTemplate(detail.Template, detail.Items), nil
}
