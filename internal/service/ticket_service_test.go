package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartticket/platform/internal/domain"
	"github.com/smartticket/platform/internal/events"
	"github.com/smartticket/platform/internal/repository"
	apperrors "github.com/smartticket/platform/pkg/util"
)

type fakePublisher struct {
	envelopes []events.Envelope
	err       error
}

func (p *fakePublisher) Publish(ctx context.Context, env events.Envelope) error {
	if p.err != nil {
		return p.err
	}
	p.envelopes = append(p.envelopes, env)
	return nil
}

func (p *fakePublisher) typesPublished() []events.EventType {
	var types []events.EventType
	for _, env := range p.envelopes {
		types = append(types, env.Type)
	}
	return types
}

type fakeTicketRepo struct {
	tickets map[int64]domain.Ticket
	nextID  int64
	updates []repository.TicketUpdate
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{tickets: map[int64]domain.Ticket{}, nextID: 1}
}

func (r *fakeTicketRepo) Create(ctx context.Context, ticket *domain.Ticket) error {
	ticket.ID = r.nextID
	r.nextID++
	ticket.CreatedAt = time.Now().UTC()
	ticket.UpdatedAt = ticket.CreatedAt
	r.tickets[ticket.ID] = *ticket
	return nil
}

func (r *fakeTicketRepo) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	ticket, ok := r.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &ticket, nil
}

func (r *fakeTicketRepo) List(ctx context.Context, filter domain.TicketFilter) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for _, ticket := range r.tickets {
		if filter.Status != "" && string(ticket.Status) != filter.Status {
			continue
		}
		if filter.Department != "" && (ticket.Department == nil || *ticket.Department != filter.Department) {
			continue
		}
		result = append(result, ticket)
	}
	return result, nil
}

func (r *fakeTicketRepo) Update(ctx context.Context, id int64, update repository.TicketUpdate) (*domain.Ticket, error) {
	ticket, ok := r.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	r.updates = append(r.updates, update)
	if update.Status != nil {
		ticket.Status = domain.TicketStatus(*update.Status)
	}
	if update.Department != nil {
		ticket.Department = update.Department
	}
	if update.ConfidenceScore != nil {
		ticket.ConfidenceScore = update.ConfidenceScore
	}
	ticket.UpdatedAt = time.Now().UTC()
	r.tickets[id] = ticket
	return &ticket, nil
}

func (r *fakeTicketRepo) Exists(ctx context.Context, id int64) (bool, error) {
	_, ok := r.tickets[id]
	return ok, nil
}

func (r *fakeTicketRepo) Stats(ctx context.Context) (*domain.TicketStats, error) {
	return &domain.TicketStats{ByDepartment: map[string]int64{}, ByStatus: map[string]int64{}}, nil
}

func newTicketServiceForTest() (*TicketService, *fakeTicketRepo, *fakePublisher) {
	repo := newFakeTicketRepo()
	pub := &fakePublisher{}
	svc := NewTicketService(TicketDependencies{TicketRepo: repo, Publisher: pub})
	return svc, repo, pub
}

func validCreateInput() TicketCreateInput {
	return TicketCreateInput{
		Title:       "VPN not connecting",
		Description: "Can't connect to VPN from home",
		UserName:    "Dana Smith",
		UserEmail:   "dana@example.com",
	}
}

func TestCreateTicketStoresPendingAndPublishes(t *testing.T) {
	svc, repo, pub := newTicketServiceForTest()

	ticket, err := svc.CreateTicket(context.Background(), validCreateInput())
	require.NoError(t, err)

	assert.Equal(t, domain.TicketStatusPending, ticket.Status)
	assert.Nil(t, ticket.Department)
	assert.Nil(t, ticket.ConfidenceScore)
	assert.Len(t, repo.tickets, 1)

	require.Len(t, pub.envelopes, 1)
	assert.Equal(t, events.EventTicketCreated, pub.envelopes[0].Type)

	payload, err := pub.envelopes[0].DecodePayload()
	require.NoError(t, err)
	created := payload.(*events.TicketCreated)
	assert.Equal(t, ticket.ID, created.Ticket.ID)
	assert.Equal(t, "VPN not connecting", created.Ticket.Title)
}

func TestCreateTicketValidatesRequiredFields(t *testing.T) {
	svc, repo, _ := newTicketServiceForTest()

	for _, tt := range []struct {
		field  string
		mutate func(*TicketCreateInput)
	}{
		{"title", func(in *TicketCreateInput) { in.Title = "" }},
		{"description", func(in *TicketCreateInput) { in.Description = "  " }},
		{"user_name", func(in *TicketCreateInput) { in.UserName = "" }},
		{"user_email", func(in *TicketCreateInput) { in.UserEmail = "" }},
	} {
		input := validCreateInput()
		tt.mutate(&input)

		_, err := svc.CreateTicket(context.Background(), input)
		require.Error(t, err, tt.field)

		domainErr := apperrors.ToDomainError(err)
		assert.Equal(t, 400, domainErr.HTTPStatus)
		assert.Contains(t, domainErr.Message, tt.field)
	}
	assert.Empty(t, repo.tickets)
}

func TestCreateTicketSurvivesPublishFailure(t *testing.T) {
	repo := newFakeTicketRepo()
	pub := &fakePublisher{err: errors.New("broker down")}
	svc := NewTicketService(TicketDependencies{TicketRepo: repo, Publisher: pub})

	ticket, err := svc.CreateTicket(context.Background(), validCreateInput())
	require.NoError(t, err)
	assert.NotZero(t, ticket.ID)
}

func TestUpdateTicketStatusPublishesStatusEvent(t *testing.T) {
	svc, _, pub := newTicketServiceForTest()
	ticket, err := svc.CreateTicket(context.Background(), validCreateInput())
	require.NoError(t, err)

	updated, err := svc.UpdateTicketStatus(context.Background(), ticket.ID, "in_progress")
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusInProgress, updated.Status)

	assert.Equal(t, []events.EventType{events.EventTicketCreated, events.EventStatusUpdated}, pub.typesPublished())
}

func TestUpdateTicketStatusRejectsUnknownStatus(t *testing.T) {
	svc, _, _ := newTicketServiceForTest()
	ticket, err := svc.CreateTicket(context.Background(), validCreateInput())
	require.NoError(t, err)

	_, err = svc.UpdateTicketStatus(context.Background(), ticket.ID, "closed")
	require.Error(t, err)

	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, 400, domainErr.HTTPStatus)
	assert.Contains(t, domainErr.Message, "pending, in_progress, resolved")
}

func TestUpdateTicketStatusMissingTicketIs404(t *testing.T) {
	svc, _, _ := newTicketServiceForTest()

	_, err := svc.UpdateTicketStatus(context.Background(), 99, "resolved")
	require.Error(t, err)
	assert.Equal(t, 404, apperrors.ToDomainError(err).HTTPStatus)
}

func TestUpdateTicketDepartmentCarriesConfidence(t *testing.T) {
	svc, repo, pub := newTicketServiceForTest()
	ticket, err := svc.CreateTicket(context.Background(), validCreateInput())
	require.NoError(t, err)

	department := "IT Support"
	confidence := 80
	_, err = svc.UpdateTicket(context.Background(), ticket.ID, TicketUpdateInput{
		Department:      &department,
		ConfidenceScore: &confidence,
	})
	require.NoError(t, err)

	require.Len(t, repo.updates, 1)
	require.NotNil(t, repo.updates[0].ConfidenceScore)
	assert.Equal(t, 80, *repo.updates[0].ConfidenceScore)

	types := pub.typesPublished()
	assert.Contains(t, types, events.EventDepartmentUpdated)
	assert.NotContains(t, types, events.EventStatusUpdated)
}

func TestUpdateTicketDepartmentWithoutConfidenceFallsBackToStored(t *testing.T) {
	svc, repo, _ := newTicketServiceForTest()
	ticket, err := svc.CreateTicket(context.Background(), validCreateInput())
	require.NoError(t, err)

	stored := 65
	entry := repo.tickets[ticket.ID]
	entry.ConfidenceScore = &stored
	repo.tickets[ticket.ID] = entry

	department := "HR"
	_, err = svc.UpdateTicket(context.Background(), ticket.ID, TicketUpdateInput{Department: &department})
	require.NoError(t, err)

	require.Len(t, repo.updates, 1)
	require.NotNil(t, repo.updates[0].ConfidenceScore)
	assert.Equal(t, 65, *repo.updates[0].ConfidenceScore)
}

func TestUpdateTicketRejectsInvalidEnumsAndEmptyUpdates(t *testing.T) {
	svc, _, _ := newTicketServiceForTest()
	ticket, err := svc.CreateTicket(context.Background(), validCreateInput())
	require.NoError(t, err)

	badStatus := "escalated"
	_, err = svc.UpdateTicket(context.Background(), ticket.ID, TicketUpdateInput{Status: &badStatus})
	assert.Equal(t, 400, apperrors.ToDomainError(err).HTTPStatus)

	badDept := "Engineering"
	_, err = svc.UpdateTicket(context.Background(), ticket.ID, TicketUpdateInput{Department: &badDept})
	assert.Equal(t, 400, apperrors.ToDomainError(err).HTTPStatus)

	_, err = svc.UpdateTicket(context.Background(), ticket.ID, TicketUpdateInput{})
	require.Error(t, err)
	assert.Contains(t, apperrors.ToDomainError(err).Message, "No valid fields")
}
