package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/harvestChurchAdmin/volunteer-event-management-sub000/internal/model"
	"github.com/harvestChurchAdmin/volunteer-event-management-sub000/internal/repository"
)

// ── In-memory store ──
//
// The mock repos share one store so joins (slot → station → event) behave
// like the real schema. The Tx runner hands out the same store; tests do not
// exercise rollback.

type memDB struct {
	seq           int
	clock         time.Time
	events        map[string]*model.Event
	stations      map[string]*model.Station
	slots         map[string]*model.Slot
	registrations map[string]*model.Registration
	participants  map[string]*model.Participant
	assignments   map[string]*model.Assignment
}

func newMemDB() *memDB {
	return &memDB{
		clock:         time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC),
		events:        make(map[string]*model.Event),
		stations:      make(map[string]*model.Station),
		slots:         make(map[string]*model.Slot),
		registrations: make(map[string]*model.Registration),
		participants:  make(map[string]*model.Participant),
		assignments:   make(map[string]*model.Assignment),
	}
}

func (d *memDB) nextID(prefix string) string {
	d.seq++
	return fmt.Sprintf("%s-%03d", prefix, d.seq)
}

func (d *memDB) tick() time.Time {
	d.clock = d.clock.Add(time.Second)
	return d.clock
}

func (d *memDB) repo() *repository.Repository {
	r := &repository.Repository{
		Event:        &mockEventRepo{d},
		Station:      &mockStationRepo{d},
		Slot:         &mockSlotRepo{d},
		Registration: &mockRegistrationRepo{d},
		Participant:  &mockParticipantRepo{d},
		Assignment:   &mockAssignmentRepo{d},
	}
	r.Tx = &mockTxRunner{d}
	return r
}

type mockTxRunner struct{ d *memDB }

func (t *mockTxRunner) WithTransaction(_ context.Context, fn func(txRepo *repository.Repository) error) error {
	return fn(t.d.repo())
}

// ── Seed helpers ──

func (d *memDB) seedEvent(mode, state string) *model.Event {
	e := &model.Event{EventID: d.nextID("evt"), Title: "Spring Festival", SignupMode: mode, PublishState: state}
	e.CreatedAt = d.tick()
	e.UpdatedAt = e.CreatedAt
	d.events[e.EventID] = e
	return e
}

func (d *memDB) seedStation(eventID, name string) *model.Station {
	s := &model.Station{StationID: d.nextID("stn"), EventID: eventID, Name: name}
	s.CreatedAt = d.tick()
	d.stations[s.StationID] = s
	return s
}

func (d *memDB) seedSlot(stationID string, capacity int, startsAt, endsAt *time.Time) *model.Slot {
	s := &model.Slot{SlotID: d.nextID("slt"), StationID: stationID, CapacityNeeded: capacity, StartsAt: startsAt, EndsAt: endsAt}
	s.CreatedAt = d.tick()
	d.slots[s.SlotID] = s
	return s
}

func (d *memDB) seedPotluckSlot(stationID string, capacity int, title string) *model.Slot {
	s := &model.Slot{SlotID: d.nextID("slt"), StationID: stationID, CapacityNeeded: capacity, Title: title}
	s.CreatedAt = d.tick()
	d.slots[s.SlotID] = s
	return s
}

func tp(t time.Time) *time.Time { return &t }

// ── Mock EventRepository ──

type mockEventRepo struct{ d *memDB }

func (m *mockEventRepo) Create(_ context.Context, event *model.Event) error {
	if event.EventID == "" {
		event.EventID = m.d.nextID("evt")
	}
	event.CreatedAt = m.d.tick()
	event.UpdatedAt = event.CreatedAt
	m.d.events[event.EventID] = event
	return nil
}

func (m *mockEventRepo) GetByID(_ context.Context, id string) (*model.Event, error) {
	if e, ok := m.d.events[id]; ok {
		return e, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockEventRepo) GetWithStations(_ context.Context, id string) (*model.Event, error) {
	e, ok := m.d.events[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := *e
	out.Stations = nil
	var stations []*model.Station
	for _, s := range m.d.stations {
		if s.EventID == id {
			stations = append(stations, s)
		}
	}
	sort.Slice(stations, func(i, j int) bool { return stations[i].Position < stations[j].Position })
	for _, s := range stations {
		st := *s
		st.Slots = nil
		for _, sl := range m.d.slots {
			if sl.StationID == s.StationID {
				st.Slots = append(st.Slots, *sl)
			}
		}
		sort.Slice(st.Slots, func(i, j int) bool { return st.Slots[i].SlotID < st.Slots[j].SlotID })
		out.Stations = append(out.Stations, st)
	}
	return &out, nil
}

func (m *mockEventRepo) ListPublished(_ context.Context) ([]model.Event, error) {
	var out []model.Event
	for _, e := range m.d.events {
		if e.PublishState == model.PublishStatePublished {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EventID < out[j].EventID })
	return out, nil
}

func (m *mockEventRepo) Update(_ context.Context, event *model.Event) error {
	event.UpdatedAt = m.d.tick()
	m.d.events[event.EventID] = event
	return nil
}

func (m *mockEventRepo) Delete(_ context.Context, id string) error {
	delete(m.d.events, id)
	return nil
}

// ── Mock StationRepository ──

type mockStationRepo struct{ d *memDB }

func (m *mockStationRepo) Create(_ context.Context, station *model.Station) error {
	if station.StationID == "" {
		station.StationID = m.d.nextID("stn")
	}
	station.CreatedAt = m.d.tick()
	m.d.stations[station.StationID] = station
	return nil
}

func (m *mockStationRepo) GetByID(_ context.Context, id string) (*model.Station, error) {
	if s, ok := m.d.stations[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStationRepo) ListByEvent(_ context.Context, eventID string) ([]model.Station, error) {
	var out []model.Station
	for _, s := range m.d.stations {
		if s.EventID == eventID {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (m *mockStationRepo) Update(_ context.Context, station *model.Station) error {
	m.d.stations[station.StationID] = station
	return nil
}

func (m *mockStationRepo) Delete(_ context.Context, id string) error {
	delete(m.d.stations, id)
	return nil
}

func (m *mockStationRepo) MaxPosition(_ context.Context, eventID string) (int, error) {
	max := 0
	for _, s := range m.d.stations {
		if s.EventID == eventID && s.Position > max {
			max = s.Position
		}
	}
	return max, nil
}

// ── Mock SlotRepository ──

type mockSlotRepo struct{ d *memDB }

func (m *mockSlotRepo) Create(_ context.Context, slot *model.Slot) error {
	if slot.SlotID == "" {
		slot.SlotID = m.d.nextID("slt")
	}
	slot.CreatedAt = m.d.tick()
	m.d.slots[slot.SlotID] = slot
	return nil
}

func (m *mockSlotRepo) GetByID(_ context.Context, id string) (*model.Slot, error) {
	s, ok := m.d.slots[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := *s
	if st, ok := m.d.stations[s.StationID]; ok {
		stCopy := *st
		out.Station = &stCopy
	}
	return &out, nil
}

func (m *mockSlotRepo) ListByEvent(_ context.Context, eventID string) ([]model.Slot, error) {
	var out []model.Slot
	for _, s := range m.d.slots {
		st, ok := m.d.stations[s.StationID]
		if ok && st.EventID == eventID {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SlotID < out[j].SlotID })
	return out, nil
}

func (m *mockSlotRepo) Update(_ context.Context, slot *model.Slot) error {
	slot.Station = nil
	m.d.slots[slot.SlotID] = slot
	return nil
}

func (m *mockSlotRepo) Delete(_ context.Context, id string) error {
	delete(m.d.slots, id)
	return nil
}

func (m *mockSlotRepo) InfoForUpdate(_ context.Context, slotIDs []string) ([]repository.SlotInfo, error) {
	sorted := append([]string(nil), slotIDs...)
	sort.Strings(sorted)
	var infos []repository.SlotInfo
	for _, id := range sorted {
		s, ok := m.d.slots[id]
		if !ok {
			continue
		}
		info := repository.SlotInfo{
			SlotID:         s.SlotID,
			StationID:      s.StationID,
			CapacityNeeded: s.CapacityNeeded,
			StartsAt:       s.StartsAt,
			EndsAt:         s.EndsAt,
			Title:          s.Title,
			ServesMin:      s.ServesMin,
			ServesMax:      s.ServesMax,
		}
		if st, ok := m.d.stations[s.StationID]; ok {
			info.EventID = st.EventID
			if e, ok := m.d.events[st.EventID]; ok {
				info.SignupMode = e.SignupMode
			}
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// ── Mock RegistrationRepository ──

type mockRegistrationRepo struct{ d *memDB }

func (m *mockRegistrationRepo) Create(_ context.Context, reg *model.Registration) error {
	if reg.RegistrationID == "" {
		reg.RegistrationID = m.d.nextID("reg")
	}
	reg.CreatedAt = m.d.tick()
	reg.UpdatedAt = reg.CreatedAt
	m.d.registrations[reg.RegistrationID] = reg
	return nil
}

func (m *mockRegistrationRepo) attachParticipants(reg *model.Registration) *model.Registration {
	out := *reg
	out.Participants = nil
	var ps []*model.Participant
	for _, p := range m.d.participants {
		if p.RegistrationID == reg.RegistrationID {
			ps = append(ps, p)
		}
	}
	sort.Slice(ps, func(i, j int) bool { return ps[i].CreatedAt.Before(ps[j].CreatedAt) })
	for _, p := range ps {
		out.Participants = append(out.Participants, *p)
	}
	return &out
}

func (m *mockRegistrationRepo) GetByID(_ context.Context, id string) (*model.Registration, error) {
	reg, ok := m.d.registrations[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return m.attachParticipants(reg), nil
}

func (m *mockRegistrationRepo) ListByEventAndEmail(_ context.Context, eventID, email string) ([]model.Registration, error) {
	needle := strings.ToLower(strings.TrimSpace(email))
	var out []model.Registration
	for _, reg := range m.d.registrations {
		if reg.EventID == eventID && reg.NormalizedEmail() == needle {
			out = append(out, *m.attachParticipants(reg))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *mockRegistrationRepo) ListByEvent(_ context.Context, eventID string) ([]model.Registration, error) {
	var out []model.Registration
	for _, reg := range m.d.registrations {
		if reg.EventID != eventID {
			continue
		}
		full := m.attachParticipants(reg)
		for i := range full.Participants {
			p := &full.Participants[i]
			for _, a := range m.d.assignments {
				if a.ParticipantID == p.ParticipantID {
					p.Assignments = append(p.Assignments, *a)
				}
			}
		}
		out = append(out, *full)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *mockRegistrationRepo) Update(_ context.Context, reg *model.Registration) error {
	reg.UpdatedAt = m.d.tick()
	m.d.registrations[reg.RegistrationID] = reg
	return nil
}

func (m *mockRegistrationRepo) Delete(_ context.Context, id string) error {
	// Mirror the schema's cascading foreign keys.
	for pid, p := range m.d.participants {
		if p.RegistrationID != id {
			continue
		}
		for aid, a := range m.d.assignments {
			if a.ParticipantID == pid {
				delete(m.d.assignments, aid)
			}
		}
		delete(m.d.participants, pid)
	}
	delete(m.d.registrations, id)
	return nil
}

func (m *mockRegistrationRepo) GetByTokenValue(_ context.Context, value string) (*model.Registration, error) {
	if value == "" {
		return nil, gorm.ErrRecordNotFound
	}
	for _, reg := range m.d.registrations {
		if reg.ManageTokenHash == value {
			return m.attachParticipants(reg), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockRegistrationRepo) UpdateTokenHash(_ context.Context, id, hash string, expiresAt *time.Time) error {
	reg, ok := m.d.registrations[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	reg.ManageTokenHash = hash
	reg.ManageTokenExpiresAt = expiresAt
	return nil
}

func (m *mockRegistrationRepo) DeleteEmpty(_ context.Context, eventID string) (int64, error) {
	var n int64
	for id, reg := range m.d.registrations {
		if reg.EventID != eventID {
			continue
		}
		empty := true
		for _, p := range m.d.participants {
			if p.RegistrationID == id {
				empty = false
				break
			}
		}
		if empty {
			delete(m.d.registrations, id)
			n++
		}
	}
	return n, nil
}

func (m *mockRegistrationRepo) ClearExpiredTokens(_ context.Context, now time.Time) (int64, error) {
	var n int64
	for _, reg := range m.d.registrations {
		if reg.ManageTokenHash != "" && reg.ManageTokenExpiresAt != nil && reg.ManageTokenExpiresAt.Before(now) {
			reg.ManageTokenHash = ""
			reg.ManageTokenExpiresAt = nil
			n++
		}
	}
	return n, nil
}

// ── Mock ParticipantRepository ──

type mockParticipantRepo struct{ d *memDB }

func (m *mockParticipantRepo) Create(_ context.Context, participant *model.Participant) error {
	if participant.ParticipantID == "" {
		participant.ParticipantID = m.d.nextID("par")
	}
	participant.CreatedAt = m.d.tick()
	m.d.participants[participant.ParticipantID] = participant
	return nil
}

func (m *mockParticipantRepo) GetByID(_ context.Context, id string) (*model.Participant, error) {
	if p, ok := m.d.participants[id]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockParticipantRepo) ListByRegistration(_ context.Context, registrationID string) ([]model.Participant, error) {
	var out []model.Participant
	for _, p := range m.d.participants {
		if p.RegistrationID == registrationID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *mockParticipantRepo) Update(_ context.Context, participant *model.Participant) error {
	m.d.participants[participant.ParticipantID] = participant
	return nil
}

func (m *mockParticipantRepo) Delete(_ context.Context, id string) error {
	delete(m.d.participants, id)
	return nil
}

func (m *mockParticipantRepo) DeleteByRegistration(_ context.Context, registrationID string) error {
	for id, p := range m.d.participants {
		if p.RegistrationID == registrationID {
			delete(m.d.participants, id)
		}
	}
	return nil
}

// ── Mock AssignmentRepository ──

type mockAssignmentRepo struct{ d *memDB }

func (m *mockAssignmentRepo) BatchCreate(_ context.Context, assignments []model.Assignment) error {
	for i := range assignments {
		a := assignments[i]
		for _, existing := range m.d.assignments {
			if existing.ParticipantID == a.ParticipantID && existing.SlotID == a.SlotID {
				return fmt.Errorf("duplicate assignment %s/%s", a.ParticipantID, a.SlotID)
			}
		}
		if a.AssignmentID == "" {
			a.AssignmentID = m.d.nextID("asg")
		}
		a.CreatedAt = m.d.tick()
		m.d.assignments[a.AssignmentID] = &a
	}
	return nil
}

func (m *mockAssignmentRepo) ListByRegistration(_ context.Context, registrationID string) ([]model.Assignment, error) {
	var out []model.Assignment
	for _, a := range m.d.assignments {
		p, ok := m.d.participants[a.ParticipantID]
		if !ok || p.RegistrationID != registrationID {
			continue
		}
		cp := *a
		if s, ok := m.d.slots[a.SlotID]; ok {
			slot := *s
			if st, ok := m.d.stations[s.StationID]; ok {
				station := *st
				slot.Station = &station
			}
			cp.Slot = &slot
		}
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *mockAssignmentRepo) ListBySlots(_ context.Context, slotIDs []string) ([]model.Assignment, error) {
	wanted := make(map[string]bool, len(slotIDs))
	for _, id := range slotIDs {
		wanted[id] = true
	}
	var out []model.Assignment
	for _, a := range m.d.assignments {
		if wanted[a.SlotID] {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (m *mockAssignmentRepo) CountBySlots(_ context.Context, slotIDs []string) (map[string]int, error) {
	wanted := make(map[string]bool, len(slotIDs))
	for _, id := range slotIDs {
		wanted[id] = true
	}
	counts := make(map[string]int)
	for _, a := range m.d.assignments {
		if wanted[a.SlotID] {
			counts[a.SlotID]++
		}
	}
	return counts, nil
}

func (m *mockAssignmentRepo) CountByEvent(_ context.Context, eventID string) (map[string]int, error) {
	counts := make(map[string]int)
	for _, a := range m.d.assignments {
		s, ok := m.d.slots[a.SlotID]
		if !ok {
			continue
		}
		st, ok := m.d.stations[s.StationID]
		if !ok || st.EventID != eventID {
			continue
		}
		counts[a.SlotID]++
	}
	return counts, nil
}

func (m *mockAssignmentRepo) DeleteByKeys(_ context.Context, keys []model.AssignmentKey) error {
	for _, k := range keys {
		for id, a := range m.d.assignments {
			if a.ParticipantID == k.ParticipantID && a.SlotID == k.SlotID {
				delete(m.d.assignments, id)
			}
		}
	}
	return nil
}

func (m *mockAssignmentRepo) DeleteByParticipant(_ context.Context, participantID string) error {
	for id, a := range m.d.assignments {
		if a.ParticipantID == participantID {
			delete(m.d.assignments, id)
		}
	}
	return nil
}
