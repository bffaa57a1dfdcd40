// Package memory provides an in-memory implementation of every outbound
// store port. It backs unit tests, including failure injection for
// atomicity checks.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/ativus/ativus/application/port/outbound"
	"github.com/ativus/ativus/domain"
)

// Failure injection points for the lifecycle Apply path.
const (
	FailNone        = ""
	FailBeforeWrite = "before_write" // command validated, nothing persisted yet
	FailAfterEvent  = "after_event"  // simulates dying between event append and projection update
)

type assetRecord struct {
	asset  domain.Asset
	state  domain.LifecycleState
	events []domain.AuditEvent
}

// Store holds everything behind one mutex. Apply validates first and
// mutates in one critical section, mirroring the single-transaction
// guarantee of the postgres adapter. Port interfaces are exposed through
// the facet accessors because their method sets collide on names.
type Store struct {
	mu      sync.Mutex
	assets  map[string]*assetRecord // keyed by asset id
	serials map[string]string       // company|serial -> asset id
	tickets map[string]*domain.MaintenanceTicket
	holders map[string]*domain.Holder

	failApply string
}

func NewStore() *Store {
	return &Store{
		assets:  map[string]*assetRecord{},
		serials: map[string]string{},
		tickets: map[string]*domain.MaintenanceTicket{},
		holders: map[string]*domain.Holder{},
	}
}

// Facet accessors.

func (s *Store) Lifecycle() outbound.LifecycleStore      { return lifecycleFacet{s} }
func (s *Store) Assets() outbound.AssetRepository        { return assetFacet{s} }
func (s *Store) Audit() outbound.AuditRepository         { return auditFacet{s} }
func (s *Store) Tickets() outbound.MaintenanceRepository { return ticketFacet{s} }
func (s *Store) Holders() outbound.HolderRepository      { return holderFacet{s} }

// FailNextApply arms one injected failure for the next Apply call.
func (s *Store) FailNextApply(point string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failApply = point
}

func serialKey(companyID, serial string) string {
	return companyID + "|" + strings.ToUpper(serial)
}

func (s *Store) record(companyID, assetID string) (*assetRecord, error) {
	rec, ok := s.assets[assetID]
	if !ok || rec.asset.CompanyID != companyID {
		return nil, fmt.Errorf("%w: %s", domain.ErrAssetNotFound, assetID)
	}
	return rec, nil
}

// --- lifecycle facet ---

type lifecycleFacet struct{ s *Store }

func (f lifecycleFacet) Register(ctx context.Context, asset *domain.Asset, state *domain.LifecycleState, event *domain.AuditEvent) error {
	s := f.s
	s.mu.Lock()
	defer s.mu.Unlock()

	key := serialKey(asset.CompanyID, asset.SerialNumber)
	if _, exists := s.serials[key]; exists {
		return fmt.Errorf("%w: %s", domain.ErrDuplicateSerial, asset.SerialNumber)
	}

	s.serials[key] = asset.ID
	s.assets[asset.ID] = &assetRecord{
		asset:  *asset,
		state:  *state,
		events: []domain.AuditEvent{*event},
	}
	return nil
}

func (f lifecycleFacet) GetState(ctx context.Context, companyID, assetID string) (*domain.LifecycleState, error) {
	s := f.s
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.record(companyID, assetID)
	if err != nil {
		return nil, err
	}
	state := rec.state
	return &state, nil
}

func (f lifecycleFacet) Apply(ctx context.Context, w outbound.TransitionWrite) error {
	s := f.s
	s.mu.Lock()
	defer s.mu.Unlock()

	fail := s.failApply
	s.failApply = FailNone

	if fail == FailBeforeWrite {
		return fmt.Errorf("injected storage failure before write")
	}

	rec, err := s.record(w.State.CompanyID, w.State.AssetID)
	if err != nil {
		return err
	}
	if rec.state.Version != w.ExpectedVersion {
		return fmt.Errorf("%w: asset %s version %d", domain.ErrConcurrentModification, w.State.AssetID, w.ExpectedVersion)
	}
	if w.OpenTicket != nil {
		for _, t := range s.tickets {
			if t.AssetID == w.OpenTicket.AssetID && t.Open() {
				return fmt.Errorf("%w: asset %s", domain.ErrTicketAlreadyOpen, t.AssetID)
			}
		}
	}

	// All validation passed. Failing here leaves nothing persisted, which
	// is the same all-or-nothing outcome a rolled-back transaction gives.
	if fail == FailAfterEvent {
		return fmt.Errorf("injected storage failure after event append")
	}

	rec.events = append(rec.events, *w.Event)
	rec.state = *w.State
	if w.OpenTicket != nil {
		t := *w.OpenTicket
		s.tickets[t.ID] = &t
	}
	if w.CloseTicket != nil {
		t := *w.CloseTicket
		s.tickets[t.ID] = &t
	}
	return nil
}

// --- asset facet ---

type assetFacet struct{ s *Store }

func (f assetFacet) FindByID(ctx context.Context, companyID, id string) (*domain.Asset, error) {
	s := f.s
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.record(companyID, id)
	if err != nil {
		return nil, err
	}
	asset := rec.asset
	return &asset, nil
}

func (f assetFacet) FindBySerial(ctx context.Context, companyID, serial string) (*domain.Asset, error) {
	s := f.s
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.serials[serialKey(companyID, serial)]
	if !ok {
		return nil, domain.ErrAssetNotFound
	}
	asset := s.assets[id].asset
	return &asset, nil
}

func (f assetFacet) FindAll(ctx context.Context, companyID string, filter domain.AssetFilter) ([]*domain.Asset, int, error) {
	s := f.s
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []*assetRecord
	for _, rec := range s.assets {
		if rec.asset.CompanyID != companyID {
			continue
		}
		if filter.Status != nil && rec.state.Status != *filter.Status {
			continue
		}
		if filter.Type != nil && rec.asset.Type != *filter.Type {
			continue
		}
		if filter.HolderKind != nil && rec.state.HolderKind != *filter.HolderKind {
			continue
		}
		if filter.HolderID != nil && (rec.state.HolderID == nil || *rec.state.HolderID != *filter.HolderID) {
			continue
		}
		if filter.Serial != nil && rec.asset.SerialNumber != strings.ToUpper(strings.TrimSpace(*filter.Serial)) {
			continue
		}
		matched = append(matched, rec)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].asset.CreatedAt.After(matched[j].asset.CreatedAt)
	})

	total := len(matched)
	start := filter.Offset
	if start > total {
		start = total
	}
	end := total
	if filter.Limit > 0 && start+filter.Limit < total {
		end = start + filter.Limit
	}

	assets := make([]*domain.Asset, 0, end-start)
	for _, rec := range matched[start:end] {
		asset := rec.asset
		assets = append(assets, &asset)
	}
	return assets, total, nil
}

func (f assetFacet) CountByStatus(ctx context.Context, companyID string) (map[domain.Status]int, error) {
	s := f.s
	s.mu.Lock()
	defer s.mu.Unlock()

	counts := map[domain.Status]int{}
	for _, rec := range s.assets {
		if rec.asset.CompanyID == companyID {
			counts[rec.state.Status]++
		}
	}
	return counts, nil
}

func (f assetFacet) CountByType(ctx context.Context, companyID string) (map[string]int, error) {
	s := f.s
	s.mu.Lock()
	defer s.mu.Unlock()

	counts := map[string]int{}
	for _, rec := range s.assets {
		if rec.asset.CompanyID == companyID {
			counts[rec.asset.Type]++
		}
	}
	return counts, nil
}

// --- audit facet ---

type auditFacet struct{ s *Store }

func (f auditFacet) ListByAsset(ctx context.Context, companyID, assetID string, offset, limit int) ([]*domain.AuditEvent, int, error) {
	all, err := f.ListAllByAsset(ctx, companyID, assetID)
	if err != nil {
		return nil, 0, err
	}
	total := len(all)
	if offset > total {
		offset = total
	}
	end := total
	if limit > 0 && offset+limit < total {
		end = offset + limit
	}
	return all[offset:end], total, nil
}

func (f auditFacet) ListAllByAsset(ctx context.Context, companyID, assetID string) ([]*domain.AuditEvent, error) {
	s := f.s
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.record(companyID, assetID)
	if err != nil {
		return nil, err
	}
	events := make([]*domain.AuditEvent, len(rec.events))
	for i := range rec.events {
		e := rec.events[i]
		events[i] = &e
	}
	return events, nil
}

// --- ticket facet ---

type ticketFacet struct{ s *Store }

func (f ticketFacet) FindOpenByAsset(ctx context.Context, companyID, assetID string) (*domain.MaintenanceTicket, error) {
	s := f.s
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range s.tickets {
		if t.CompanyID == companyID && t.AssetID == assetID && t.Open() {
			ticket := *t
			return &ticket, nil
		}
	}
	return nil, domain.ErrTicketNotFound
}

func (f ticketFacet) FindByID(ctx context.Context, companyID, ticketID string) (*domain.MaintenanceTicket, error) {
	s := f.s
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tickets[ticketID]
	if !ok || t.CompanyID != companyID {
		return nil, domain.ErrTicketNotFound
	}
	ticket := *t
	return &ticket, nil
}

func (f ticketFacet) FindAllByAsset(ctx context.Context, companyID, assetID string) ([]*domain.MaintenanceTicket, error) {
	s := f.s
	s.mu.Lock()
	defer s.mu.Unlock()

	var tickets []*domain.MaintenanceTicket
	for _, t := range s.tickets {
		if t.CompanyID == companyID && t.AssetID == assetID {
			ticket := *t
			tickets = append(tickets, &ticket)
		}
	}
	sort.Slice(tickets, func(i, j int) bool {
		return tickets[i].OpenedAt.After(tickets[j].OpenedAt)
	})
	return tickets, nil
}

func (f ticketFacet) Update(ctx context.Context, ticket *domain.MaintenanceTicket) error {
	s := f.s
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.tickets[ticket.ID]
	if !ok || existing.CompanyID != ticket.CompanyID || !existing.Open() {
		return fmt.Errorf("%w: %s", domain.ErrTicketNotFound, ticket.ID)
	}
	t := *ticket
	s.tickets[ticket.ID] = &t
	return nil
}

// --- holder facet ---

type holderFacet struct{ s *Store }

func (f holderFacet) Create(ctx context.Context, holder *domain.Holder) error {
	s := f.s
	s.mu.Lock()
	defer s.mu.Unlock()

	h := *holder
	s.holders[holder.ID] = &h
	return nil
}

func (f holderFacet) FindByID(ctx context.Context, companyID, id string) (*domain.Holder, error) {
	s := f.s
	s.mu.Lock()
	defer s.mu.Unlock()

	h, ok := s.holders[id]
	if !ok || h.CompanyID != companyID {
		return nil, domain.ErrHolderNotFound
	}
	holder := *h
	return &holder, nil
}

func (f holderFacet) FindAll(ctx context.Context, companyID string, kind *domain.HolderKind) ([]*domain.Holder, error) {
	s := f.s
	s.mu.Lock()
	defer s.mu.Unlock()

	var holders []*domain.Holder
	for _, h := range s.holders {
		if h.CompanyID != companyID {
			continue
		}
		if kind != nil && h.Kind != *kind {
			continue
		}
		holder := *h
		holders = append(holders, &holder)
	}
	sort.Slice(holders, func(i, j int) bool { return holders[i].Name < holders[j].Name })
	return holders, nil
}

func (f holderFacet) Resolve(ctx context.Context, companyID string, kind domain.HolderKind, id string) (*domain.Holder, error) {
	holder, err := f.FindByID(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if holder.Kind != kind || !holder.Active {
		return nil, fmt.Errorf("%w: %s is not an active %s", domain.ErrHolderNotFound, id, kind)
	}
	return holder, nil
}
