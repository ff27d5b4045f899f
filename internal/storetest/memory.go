// Package storetest provides in-memory implementations of the store
// interfaces and a fake mirror client, used by service tests in place of
// a live database and workspace API.
package storetest

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/almanac/internal/domain"
	"github.com/phrazzld/almanac/internal/events"
	"github.com/phrazzld/almanac/internal/store"
)

// Compile-time check that Memory satisfies store.TxManager.
var _ store.TxManager = (*Memory)(nil)

type linkKey struct {
	kind    domain.EntityKind
	localID uuid.UUID
}

// Memory is an in-memory store bundle. It implements store.TxManager;
// WithinTx runs the function directly, without transactional rollback.
type Memory struct {
	mu        sync.Mutex
	projects  map[uuid.UUID]*domain.Project
	habits    map[uuid.UUID]*domain.Habit
	chores    map[uuid.UUID]*domain.Chore
	metrics   map[uuid.UUID]*domain.Metric
	persons   map[uuid.UUID]*domain.Person
	vacations map[uuid.UUID]*domain.Vacation
	tasks     map[uuid.UUID]*domain.InboxTask
	links     map[linkKey]*domain.SyncLink
	events    []*events.Event
}

// NewMemory creates an empty in-memory store bundle.
func NewMemory() *Memory {
	return &Memory{
		projects:  make(map[uuid.UUID]*domain.Project),
		habits:    make(map[uuid.UUID]*domain.Habit),
		chores:    make(map[uuid.UUID]*domain.Chore),
		metrics:   make(map[uuid.UUID]*domain.Metric),
		persons:   make(map[uuid.UUID]*domain.Person),
		vacations: make(map[uuid.UUID]*domain.Vacation),
		tasks:     make(map[uuid.UUID]*domain.InboxTask),
		links:     make(map[linkKey]*domain.SyncLink),
	}
}

// Stores returns the store bundle backed by this Memory.
func (m *Memory) Stores() store.Stores {
	return store.Stores{
		Projects:  &memProjects{m},
		Habits:    &memHabits{m},
		Chores:    &memChores{m},
		Metrics:   &memMetrics{m},
		Persons:   &memPersons{m},
		Vacations: &memVacations{m},
		Tasks:     &memTasks{m},
		Links:     &memLinks{m},
		Events:    &memEvents{m},
	}
}

// WithinTx runs fn against the same bundle. Mutations are not rolled
// back on error.
func (m *Memory) WithinTx(ctx context.Context, fn func(ctx context.Context, s store.Stores) error) error {
	return fn(ctx, m.Stores())
}

// Events returns a snapshot of the recorded event log.
func (m *Memory) Events() []*events.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*events.Event, len(m.events))
	copy(out, m.events)
	return out
}

// Projects.

type memProjects struct{ m *Memory }

func (s *memProjects) Create(ctx context.Context, project *domain.Project) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	for _, existing := range s.m.projects {
		if existing.Name == project.Name {
			return store.ErrDuplicate
		}
	}
	clone := *project
	s.m.projects[project.ID] = &clone
	return nil
}

func (s *memProjects) GetByID(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	project, ok := s.m.projects[id]
	if !ok {
		return nil, store.ErrProjectNotFound
	}
	clone := *project
	return &clone, nil
}

func (s *memProjects) GetByName(ctx context.Context, name string) (*domain.Project, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	for _, project := range s.m.projects {
		if project.Name == name {
			clone := *project
			return &clone, nil
		}
	}
	return nil, store.ErrProjectNotFound
}

func (s *memProjects) Update(ctx context.Context, project *domain.Project) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if _, ok := s.m.projects[project.ID]; !ok {
		return store.ErrProjectNotFound
	}
	clone := *project
	s.m.projects[project.ID] = &clone
	return nil
}

func (s *memProjects) Archive(ctx context.Context, id uuid.UUID) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	project, ok := s.m.projects[id]
	if !ok {
		return store.ErrProjectNotFound
	}
	project.Archived = true
	return nil
}

func (s *memProjects) List(ctx context.Context, includeArchived bool) ([]*domain.Project, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	var out []*domain.Project
	for _, project := range s.m.projects {
		if project.Archived && !includeArchived {
			continue
		}
		clone := *project
		out = append(out, &clone)
	}
	return out, nil
}

// Habits.

type memHabits struct{ m *Memory }

func (s *memHabits) Create(ctx context.Context, habit *domain.Habit) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	clone := *habit
	s.m.habits[habit.ID] = &clone
	return nil
}

func (s *memHabits) GetByID(ctx context.Context, id uuid.UUID) (*domain.Habit, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	habit, ok := s.m.habits[id]
	if !ok {
		return nil, store.ErrTemplateNotFound
	}
	clone := *habit
	return &clone, nil
}

func (s *memHabits) Update(ctx context.Context, habit *domain.Habit) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if _, ok := s.m.habits[habit.ID]; !ok {
		return store.ErrTemplateNotFound
	}
	clone := *habit
	s.m.habits[habit.ID] = &clone
	return nil
}

func (s *memHabits) Archive(ctx context.Context, id uuid.UUID) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	habit, ok := s.m.habits[id]
	if !ok {
		return store.ErrTemplateNotFound
	}
	habit.Archived = true
	return nil
}

func (s *memHabits) List(ctx context.Context, filter store.TemplateFilter) ([]*domain.Habit, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	var out []*domain.Habit
	for _, habit := range s.m.habits {
		if !filter.Matches(habit.ID, habit.ProjectID, habit.Archived) {
			continue
		}
		clone := *habit
		out = append(out, &clone)
	}
	return out, nil
}

// Chores.

type memChores struct{ m *Memory }

func (s *memChores) Create(ctx context.Context, chore *domain.Chore) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	clone := *chore
	s.m.chores[chore.ID] = &clone
	return nil
}

func (s *memChores) GetByID(ctx context.Context, id uuid.UUID) (*domain.Chore, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	chore, ok := s.m.chores[id]
	if !ok {
		return nil, store.ErrTemplateNotFound
	}
	clone := *chore
	return &clone, nil
}

func (s *memChores) Update(ctx context.Context, chore *domain.Chore) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if _, ok := s.m.chores[chore.ID]; !ok {
		return store.ErrTemplateNotFound
	}
	clone := *chore
	s.m.chores[chore.ID] = &clone
	return nil
}

func (s *memChores) Archive(ctx context.Context, id uuid.UUID) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	chore, ok := s.m.chores[id]
	if !ok {
		return store.ErrTemplateNotFound
	}
	chore.Archived = true
	return nil
}

func (s *memChores) List(ctx context.Context, filter store.TemplateFilter) ([]*domain.Chore, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	var out []*domain.Chore
	for _, chore := range s.m.chores {
		if !filter.Matches(chore.ID, chore.ProjectID, chore.Archived) {
			continue
		}
		clone := *chore
		out = append(out, &clone)
	}
	return out, nil
}

// Metrics.

type memMetrics struct{ m *Memory }

func (s *memMetrics) Create(ctx context.Context, metric *domain.Metric) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	clone := *metric
	s.m.metrics[metric.ID] = &clone
	return nil
}

func (s *memMetrics) GetByID(ctx context.Context, id uuid.UUID) (*domain.Metric, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	metric, ok := s.m.metrics[id]
	if !ok {
		return nil, store.ErrTemplateNotFound
	}
	clone := *metric
	return &clone, nil
}

func (s *memMetrics) Update(ctx context.Context, metric *domain.Metric) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if _, ok := s.m.metrics[metric.ID]; !ok {
		return store.ErrTemplateNotFound
	}
	clone := *metric
	s.m.metrics[metric.ID] = &clone
	return nil
}

func (s *memMetrics) Archive(ctx context.Context, id uuid.UUID) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	metric, ok := s.m.metrics[id]
	if !ok {
		return store.ErrTemplateNotFound
	}
	metric.Archived = true
	return nil
}

func (s *memMetrics) List(ctx context.Context, filter store.TemplateFilter) ([]*domain.Metric, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	var out []*domain.Metric
	for _, metric := range s.m.metrics {
		if !filter.Matches(metric.ID, metric.ProjectID, metric.Archived) {
			continue
		}
		clone := *metric
		out = append(out, &clone)
	}
	return out, nil
}

// Persons.

type memPersons struct{ m *Memory }

func (s *memPersons) Create(ctx context.Context, person *domain.Person) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	clone := *person
	s.m.persons[person.ID] = &clone
	return nil
}

func (s *memPersons) GetByID(ctx context.Context, id uuid.UUID) (*domain.Person, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	person, ok := s.m.persons[id]
	if !ok {
		return nil, store.ErrTemplateNotFound
	}
	clone := *person
	return &clone, nil
}

func (s *memPersons) Update(ctx context.Context, person *domain.Person) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if _, ok := s.m.persons[person.ID]; !ok {
		return store.ErrTemplateNotFound
	}
	clone := *person
	s.m.persons[person.ID] = &clone
	return nil
}

func (s *memPersons) Archive(ctx context.Context, id uuid.UUID) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	person, ok := s.m.persons[id]
	if !ok {
		return store.ErrTemplateNotFound
	}
	person.Archived = true
	return nil
}

func (s *memPersons) List(ctx context.Context, filter store.TemplateFilter) ([]*domain.Person, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	var out []*domain.Person
	for _, person := range s.m.persons {
		if !filter.Matches(person.ID, person.ProjectID, person.Archived) {
			continue
		}
		clone := *person
		out = append(out, &clone)
	}
	return out, nil
}

// Vacations.

type memVacations struct{ m *Memory }

func (s *memVacations) Create(ctx context.Context, vacation *domain.Vacation) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	clone := *vacation
	s.m.vacations[vacation.ID] = &clone
	return nil
}

func (s *memVacations) GetByID(ctx context.Context, id uuid.UUID) (*domain.Vacation, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	vacation, ok := s.m.vacations[id]
	if !ok {
		return nil, store.ErrVacationNotFound
	}
	clone := *vacation
	return &clone, nil
}

func (s *memVacations) Update(ctx context.Context, vacation *domain.Vacation) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if _, ok := s.m.vacations[vacation.ID]; !ok {
		return store.ErrVacationNotFound
	}
	clone := *vacation
	s.m.vacations[vacation.ID] = &clone
	return nil
}

func (s *memVacations) Archive(ctx context.Context, id uuid.UUID) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	vacation, ok := s.m.vacations[id]
	if !ok {
		return store.ErrVacationNotFound
	}
	vacation.Archived = true
	return nil
}

func (s *memVacations) List(ctx context.Context, includeArchived bool) ([]*domain.Vacation, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	var out []*domain.Vacation
	for _, vacation := range s.m.vacations {
		if vacation.Archived && !includeArchived {
			continue
		}
		clone := *vacation
		out = append(out, &clone)
	}
	return out, nil
}

// Inbox tasks.

type memTasks struct{ m *Memory }

func (s *memTasks) Create(ctx context.Context, task *domain.InboxTask) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if task.IsGenerated() {
		for _, existing := range s.m.tasks {
			if existing.TemplateID == task.TemplateID &&
				existing.Origin == task.Origin &&
				existing.IntervalID == task.IntervalID {
				return store.ErrDuplicate
			}
		}
	}
	clone := *task
	s.m.tasks[task.ID] = &clone
	return nil
}

func (s *memTasks) GetByID(ctx context.Context, id uuid.UUID) (*domain.InboxTask, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	task, ok := s.m.tasks[id]
	if !ok {
		return nil, store.ErrTaskNotFound
	}
	clone := *task
	return &clone, nil
}

func (s *memTasks) FindByTemplateInterval(ctx context.Context, templateID uuid.UUID, origin domain.TaskOrigin, intervalID string) (*domain.InboxTask, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	for _, task := range s.m.tasks {
		if task.TemplateID == templateID && task.Origin == origin && task.IntervalID == intervalID {
			clone := *task
			return &clone, nil
		}
	}
	return nil, store.ErrTaskNotFound
}

func (s *memTasks) Update(ctx context.Context, task *domain.InboxTask) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if _, ok := s.m.tasks[task.ID]; !ok {
		return store.ErrTaskNotFound
	}
	clone := *task
	s.m.tasks[task.ID] = &clone
	return nil
}

func (s *memTasks) Archive(ctx context.Context, id uuid.UUID) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	task, ok := s.m.tasks[id]
	if !ok {
		return store.ErrTaskNotFound
	}
	task.Status = domain.TaskStatusArchived
	return nil
}

func (s *memTasks) Purge(ctx context.Context, id uuid.UUID) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if _, ok := s.m.tasks[id]; !ok {
		return store.ErrTaskNotFound
	}
	delete(s.m.tasks, id)
	return nil
}

func (s *memTasks) List(ctx context.Context, filter store.TaskFilter) ([]*domain.InboxTask, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	var out []*domain.InboxTask
	for _, task := range s.m.tasks {
		if !taskMatches(task, filter) {
			continue
		}
		clone := *task
		out = append(out, &clone)
	}
	return out, nil
}

func taskMatches(task *domain.InboxTask, filter store.TaskFilter) bool {
	if task.Status == domain.TaskStatusArchived && !filter.IncludeArchived &&
		!containsTaskStatus(filter.Statuses, domain.TaskStatusArchived) {
		return false
	}
	if len(filter.Statuses) > 0 && !containsTaskStatus(filter.Statuses, task.Status) {
		return false
	}
	if len(filter.Origins) > 0 && !containsOrigin(filter.Origins, task.Origin) {
		return false
	}
	if len(filter.TemplateIDs) > 0 && !containsID(filter.TemplateIDs, task.TemplateID) {
		return false
	}
	if len(filter.ProjectIDs) > 0 && !containsID(filter.ProjectIDs, task.ProjectID) {
		return false
	}
	return true
}

func containsTaskStatus(list []domain.TaskStatus, v domain.TaskStatus) bool {
	for _, candidate := range list {
		if candidate == v {
			return true
		}
	}
	return false
}

func containsOrigin(list []domain.TaskOrigin, v domain.TaskOrigin) bool {
	for _, candidate := range list {
		if candidate == v {
			return true
		}
	}
	return false
}

func containsID(list []uuid.UUID, v uuid.UUID) bool {
	for _, candidate := range list {
		if candidate == v {
			return true
		}
	}
	return false
}

// Sync links.

type memLinks struct{ m *Memory }

func (s *memLinks) Upsert(ctx context.Context, link *domain.SyncLink) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	clone := *link
	s.m.links[linkKey{link.Kind, link.LocalID}] = &clone
	return nil
}

func (s *memLinks) GetByLocal(ctx context.Context, kind domain.EntityKind, localID uuid.UUID) (*domain.SyncLink, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	link, ok := s.m.links[linkKey{kind, localID}]
	if !ok {
		return nil, store.ErrLinkNotFound
	}
	clone := *link
	return &clone, nil
}

func (s *memLinks) ListByKind(ctx context.Context, kind domain.EntityKind) ([]*domain.SyncLink, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	var out []*domain.SyncLink
	for key, link := range s.m.links {
		if key.kind != kind {
			continue
		}
		clone := *link
		out = append(out, &clone)
	}
	return out, nil
}

func (s *memLinks) Delete(ctx context.Context, kind domain.EntityKind, localID uuid.UUID) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	delete(s.m.links, linkKey{kind, localID})
	return nil
}

// Events.

type memEvents struct{ m *Memory }

func (s *memEvents) Append(ctx context.Context, event *events.Event) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	s.m.events = append(s.m.events, event)
	return nil
}

func (s *memEvents) ListByEntity(ctx context.Context, kind domain.EntityKind, entityID uuid.UUID) ([]*events.Event, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	var out []*events.Event
	for _, event := range s.m.events {
		if event.EntityKind == kind && event.EntityID == entityID {
			out = append(out, event)
		}
	}
	return out, nil
}
