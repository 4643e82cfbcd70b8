package service

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/harvestChurchAdmin/volunteer-event-management-sub000/config"
	"github.com/harvestChurchAdmin/volunteer-event-management-sub000/internal/dto"
	"github.com/harvestChurchAdmin/volunteer-event-management-sub000/internal/model"
	pkgerr "github.com/harvestChurchAdmin/volunteer-event-management-sub000/pkg/errors"
)

// ── Test helpers ──

func setupSignupService() (SignupService, *memDB) {
	d := newMemDB()
	repo := d.repo()
	cfg := &config.Config{}
	cfg.Server.BaseURL = "http://signup.test"
	cfg.Signup.ManageTokenTTLDays = 90
	tokens := NewTokenService(repo, 90, zap.NewNop())
	svc := NewSignupService(cfg, repo, tokens, nil, nil, zap.NewNop())
	return svc, d
}

func signupReq(email string, names ...string) *dto.SignupRequest {
	req := &dto.SignupRequest{ContactName: "Contact " + email, ContactEmail: email}
	for _, n := range names {
		req.Participants = append(req.Participants, dto.ParticipantSignup{Name: n})
	}
	return req
}

func withChoice(req *dto.SignupRequest, participantIdx int, slotID, dish string) *dto.SignupRequest {
	p := &req.Participants[participantIdx]
	p.Choices = append(p.Choices, dto.SlotChoice{SlotID: slotID, DishName: dish})
	return req
}

func countAssignments(d *memDB, slotID string) int {
	n := 0
	for _, a := range d.assignments {
		if a.SlotID == slotID {
			n++
		}
	}
	return n
}

// ── Submit ──

func TestSubmit_CreatesRegistration(t *testing.T) {
	svc, d := setupSignupService()
	event := d.seedEvent(model.SignupModeSchedule, model.PublishStatePublished)
	station := d.seedStation(event.EventID, "Kitchen")
	slot := d.seedSlot(station.StationID, 2, tp(at(10, 0)), tp(at(11, 0)))

	req := withChoice(signupReq("ann@example.org", "Ann"), 0, slot.SlotID, "")
	result, err := svc.Submit(context.Background(), event.EventID, req)
	if err != nil {
		t.Fatalf("submit should succeed: %v", err)
	}
	if result.AlreadyExisted {
		t.Error("first submission must not report already_existed")
	}
	if result.ManageURL == "" {
		t.Error("expected a manage URL")
	}
	if countAssignments(d, slot.SlotID) != 1 {
		t.Errorf("expected 1 assignment, got %d", countAssignments(d, slot.SlotID))
	}
}

func TestSubmit_CapacityFillsThenRejects(t *testing.T) {
	svc, d := setupSignupService()
	event := d.seedEvent(model.SignupModeSchedule, model.PublishStatePublished)
	station := d.seedStation(event.EventID, "Kitchen")
	slot := d.seedSlot(station.StationID, 2, tp(at(10, 0)), tp(at(11, 0)))

	for _, email := range []string{"a@example.org", "b@example.org"} {
		req := withChoice(signupReq(email, "P "+email), 0, slot.SlotID, "")
		if _, err := svc.Submit(context.Background(), event.EventID, req); err != nil {
			t.Fatalf("submit for %s should succeed: %v", email, err)
		}
	}

	req := withChoice(signupReq("c@example.org", "Cleo"), 0, slot.SlotID, "")
	_, err := svc.Submit(context.Background(), event.EventID, req)
	if !pkgerr.IsConflict(err) {
		t.Fatalf("third signup on a 2-seat slot must conflict, got %v", err)
	}
	if countAssignments(d, slot.SlotID) != 2 {
		t.Errorf("failed submission must not write assignments, got %d", countAssignments(d, slot.SlotID))
	}
}

func TestSubmit_OverlapRejectedAbuttingAllowed(t *testing.T) {
	svc, d := setupSignupService()
	event := d.seedEvent(model.SignupModeSchedule, model.PublishStatePublished)
	station := d.seedStation(event.EventID, "Setup")
	s1 := d.seedSlot(station.StationID, 5, tp(at(10, 0)), tp(at(11, 0)))
	s2 := d.seedSlot(station.StationID, 5, tp(at(10, 30)), tp(at(11, 30)))
	s3 := d.seedSlot(station.StationID, 5, tp(at(11, 0)), tp(at(12, 0)))

	req := withChoice(withChoice(signupReq("ann@example.org", "Ann"), 0, s1.SlotID, ""), 0, s2.SlotID, "")
	if _, err := svc.Submit(context.Background(), event.EventID, req); !pkgerr.IsConflict(err) {
		t.Errorf("overlapping slots for one person must conflict, got %v", err)
	}

	req = withChoice(withChoice(signupReq("ben@example.org", "Ben"), 0, s1.SlotID, ""), 0, s3.SlotID, "")
	if _, err := svc.Submit(context.Background(), event.EventID, req); err != nil {
		t.Errorf("abutting slots should pass: %v", err)
	}
}

func TestSubmit_DoubleSubmitFoldsIntoOne(t *testing.T) {
	svc, d := setupSignupService()
	event := d.seedEvent(model.SignupModeSchedule, model.PublishStatePublished)
	station := d.seedStation(event.EventID, "Kitchen")
	slot := d.seedSlot(station.StationID, 3, tp(at(10, 0)), tp(at(11, 0)))

	req := withChoice(signupReq("ann@example.org", "Ann"), 0, slot.SlotID, "")
	first, err := svc.Submit(context.Background(), event.EventID, req)
	if err != nil {
		t.Fatalf("first submit should succeed: %v", err)
	}

	req = withChoice(signupReq("Ann@Example.org", "Ann"), 0, slot.SlotID, "")
	second, err := svc.Submit(context.Background(), event.EventID, req)
	if err != nil {
		t.Fatalf("second submit should fold, not fail: %v", err)
	}
	if !second.AlreadyExisted {
		t.Error("second submission should report already_existed")
	}
	if first.RegistrationID != second.RegistrationID {
		t.Error("both submissions must land on the same registration")
	}
	if len(d.registrations) != 1 {
		t.Errorf("expected 1 registration, got %d", len(d.registrations))
	}
	if countAssignments(d, slot.SlotID) != 1 {
		t.Errorf("folding must not duplicate assignments, got %d", countAssignments(d, slot.SlotID))
	}
}

func TestSubmit_AddsParticipantToExistingRegistration(t *testing.T) {
	svc, d := setupSignupService()
	event := d.seedEvent(model.SignupModeSchedule, model.PublishStatePublished)
	station := d.seedStation(event.EventID, "Kitchen")
	slot := d.seedSlot(station.StationID, 3, tp(at(10, 0)), tp(at(11, 0)))

	req := withChoice(signupReq("ann@example.org", "Ann"), 0, slot.SlotID, "")
	if _, err := svc.Submit(context.Background(), event.EventID, req); err != nil {
		t.Fatalf("first submit should succeed: %v", err)
	}

	req = withChoice(signupReq("ann@example.org", "Ben"), 0, slot.SlotID, "")
	if _, err := svc.Submit(context.Background(), event.EventID, req); err != nil {
		t.Fatalf("second submit should succeed: %v", err)
	}
	if len(d.participants) != 2 {
		t.Errorf("expected Ann and Ben, got %d participants", len(d.participants))
	}
	if countAssignments(d, slot.SlotID) != 2 {
		t.Errorf("expected 2 assignments, got %d", countAssignments(d, slot.SlotID))
	}
}

func TestSubmit_DraftEventHidden(t *testing.T) {
	svc, d := setupSignupService()
	event := d.seedEvent(model.SignupModeSchedule, model.PublishStateDraft)
	station := d.seedStation(event.EventID, "Kitchen")
	slot := d.seedSlot(station.StationID, 2, tp(at(10, 0)), tp(at(11, 0)))

	req := withChoice(signupReq("ann@example.org", "Ann"), 0, slot.SlotID, "")
	_, err := svc.Submit(context.Background(), event.EventID, req)
	if !pkgerr.IsNotFound(err) {
		t.Errorf("draft events must look absent to the public form, got %v", err)
	}
}

func TestSubmit_PotluckDishRequired(t *testing.T) {
	svc, d := setupSignupService()
	event := d.seedEvent(model.SignupModePotluck, model.PublishStatePublished)
	station := d.seedStation(event.EventID, "Mains")
	slot := d.seedPotluckSlot(station.StationID, 4, "Casserole")

	req := withChoice(signupReq("ann@example.org", "Ann"), 0, slot.SlotID, "")
	if _, err := svc.Submit(context.Background(), event.EventID, req); !pkgerr.IsValidation(err) {
		t.Errorf("potluck slot without dish must fail validation, got %v", err)
	}

	req = withChoice(signupReq("ann@example.org", "Ann"), 0, slot.SlotID, "Lasagna")
	if _, err := svc.Submit(context.Background(), event.EventID, req); err != nil {
		t.Errorf("potluck slot with dish should pass: %v", err)
	}
}

func TestSubmit_NoSlotChoicesRejected(t *testing.T) {
	svc, d := setupSignupService()
	event := d.seedEvent(model.SignupModeSchedule, model.PublishStatePublished)
	station := d.seedStation(event.EventID, "Kitchen")
	d.seedSlot(station.StationID, 2, tp(at(10, 0)), tp(at(11, 0)))

	_, err := svc.Submit(context.Background(), event.EventID, signupReq("ann@example.org", "Ann", "Ben"))
	if !pkgerr.IsValidation(err) {
		t.Fatalf("submission with no slot choices must fail validation, got %v", err)
	}
	if len(d.registrations) != 0 {
		t.Errorf("rejected submission must not persist a registration, %d found", len(d.registrations))
	}
}

// ── UpdateByToken ──

func TestUpdateByToken_ReplacesSelection(t *testing.T) {
	svc, d := setupSignupService()
	event := d.seedEvent(model.SignupModeSchedule, model.PublishStatePublished)
	station := d.seedStation(event.EventID, "Setup")
	s1 := d.seedSlot(station.StationID, 2, tp(at(10, 0)), tp(at(11, 0)))
	s2 := d.seedSlot(station.StationID, 2, tp(at(12, 0)), tp(at(13, 0)))

	req := withChoice(signupReq("ann@example.org", "Ann"), 0, s1.SlotID, "")
	result, err := svc.Submit(context.Background(), event.EventID, req)
	if err != nil {
		t.Fatalf("submit should succeed: %v", err)
	}
	token := result.ManageURL[len("http://signup.test/manage/"):]

	update := &dto.UpdateRegistrationRequest{
		Participants: []dto.ParticipantSignup{
			{Name: "Ann", Choices: []dto.SlotChoice{{SlotID: s2.SlotID}}},
		},
	}
	if _, err := svc.UpdateByToken(context.Background(), token, update); err != nil {
		t.Fatalf("update should succeed: %v", err)
	}
	if countAssignments(d, s1.SlotID) != 0 {
		t.Errorf("old slot should be released, still %d", countAssignments(d, s1.SlotID))
	}
	if countAssignments(d, s2.SlotID) != 1 {
		t.Errorf("new slot should be claimed, got %d", countAssignments(d, s2.SlotID))
	}
}

func TestUpdateByToken_ReconfirmingFullSlot(t *testing.T) {
	svc, d := setupSignupService()
	event := d.seedEvent(model.SignupModeSchedule, model.PublishStatePublished)
	station := d.seedStation(event.EventID, "Kitchen")
	slot := d.seedSlot(station.StationID, 1, tp(at(10, 0)), tp(at(11, 0)))

	req := withChoice(signupReq("ann@example.org", "Ann"), 0, slot.SlotID, "")
	result, err := svc.Submit(context.Background(), event.EventID, req)
	if err != nil {
		t.Fatalf("submit should succeed: %v", err)
	}
	token := result.ManageURL[len("http://signup.test/manage/"):]

	// The slot is full, and the single seat is ours: resubmitting the same
	// selection must not read as a capacity conflict.
	update := &dto.UpdateRegistrationRequest{
		Participants: []dto.ParticipantSignup{
			{Name: "Ann", Choices: []dto.SlotChoice{{SlotID: slot.SlotID}}},
		},
	}
	if _, err := svc.UpdateByToken(context.Background(), token, update); err != nil {
		t.Errorf("re-confirming own seat should pass: %v", err)
	}
	if countAssignments(d, slot.SlotID) != 1 {
		t.Errorf("expected the one original assignment, got %d", countAssignments(d, slot.SlotID))
	}
}

func TestUpdateByToken_EmptyListCancels(t *testing.T) {
	svc, d := setupSignupService()
	event := d.seedEvent(model.SignupModeSchedule, model.PublishStatePublished)
	station := d.seedStation(event.EventID, "Kitchen")
	slot := d.seedSlot(station.StationID, 2, tp(at(10, 0)), tp(at(11, 0)))

	req := withChoice(signupReq("ann@example.org", "Ann"), 0, slot.SlotID, "")
	result, err := svc.Submit(context.Background(), event.EventID, req)
	if err != nil {
		t.Fatalf("submit should succeed: %v", err)
	}
	token := result.ManageURL[len("http://signup.test/manage/"):]

	update := &dto.UpdateRegistrationRequest{Participants: []dto.ParticipantSignup{}}
	if _, err := svc.UpdateByToken(context.Background(), token, update); err != nil {
		t.Fatalf("cancel should succeed: %v", err)
	}
	if len(d.registrations) != 0 {
		t.Errorf("registration should be gone, %d remain", len(d.registrations))
	}
	if countAssignments(d, slot.SlotID) != 0 {
		t.Errorf("assignments should be released, %d remain", countAssignments(d, slot.SlotID))
	}

	if _, err := svc.GetByToken(context.Background(), token); !pkgerr.IsGone(err) {
		t.Errorf("canceled registration's token must be dead, got %v", err)
	}
}

// ── Remind ──

func TestRemind_UnknownEmailIsSilent(t *testing.T) {
	svc, d := setupSignupService()
	event := d.seedEvent(model.SignupModeSchedule, model.PublishStatePublished)

	if err := svc.Remind(context.Background(), event.EventID, "nobody@example.org"); err != nil {
		t.Errorf("unknown email must not be distinguishable, got %v", err)
	}
}

func TestRemind_ReissuesToken(t *testing.T) {
	svc, d := setupSignupService()
	event := d.seedEvent(model.SignupModeSchedule, model.PublishStatePublished)
	station := d.seedStation(event.EventID, "Kitchen")
	slot := d.seedSlot(station.StationID, 2, tp(at(10, 0)), tp(at(11, 0)))

	req := withChoice(signupReq("ann@example.org", "Ann"), 0, slot.SlotID, "")
	result, err := svc.Submit(context.Background(), event.EventID, req)
	if err != nil {
		t.Fatalf("submit should succeed: %v", err)
	}
	before := d.registrations[result.RegistrationID].ManageTokenHash

	if err := svc.Remind(context.Background(), event.EventID, "ann@example.org"); err != nil {
		t.Fatalf("remind should succeed: %v", err)
	}
	after := d.registrations[result.RegistrationID].ManageTokenHash
	if before == after {
		t.Error("remind should mint a fresh token")
	}
}

// ── GetByToken ──

func TestGetByToken_ReturnsRegistrationView(t *testing.T) {
	svc, d := setupSignupService()
	event := d.seedEvent(model.SignupModeSchedule, model.PublishStatePublished)
	station := d.seedStation(event.EventID, "Kitchen")
	slot := d.seedSlot(station.StationID, 2, tp(at(10, 0)), tp(at(11, 0)))

	req := withChoice(signupReq("ann@example.org", "Ann"), 0, slot.SlotID, "")
	result, err := svc.Submit(context.Background(), event.EventID, req)
	if err != nil {
		t.Fatalf("submit should succeed: %v", err)
	}
	token := result.ManageURL[len("http://signup.test/manage/"):]

	view, err := svc.GetByToken(context.Background(), token)
	if err != nil {
		t.Fatalf("get should succeed: %v", err)
	}
	if view.Event.ID != event.EventID {
		t.Errorf("wrong event on view: %s", view.Event.ID)
	}
	if len(view.Participants) != 1 || view.Participants[0].Name != "Ann" {
		t.Errorf("unexpected participants: %+v", view.Participants)
	}
	if len(view.Participants[0].Assignments) != 1 {
		t.Errorf("expected 1 assignment, got %d", len(view.Participants[0].Assignments))
	}
	if view.Participants[0].Assignments[0].Station != "Kitchen" {
		t.Errorf("station name missing on assignment: %+v", view.Participants[0].Assignments[0])
	}
}
