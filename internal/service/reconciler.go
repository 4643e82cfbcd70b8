package service

import (
	"context"
	"strings"

	"github.com/harvestChurchAdmin/volunteer-event-management-sub000/internal/model"
	"github.com/harvestChurchAdmin/volunteer-event-management-sub000/internal/repository"
)

// reconcile replaces the registration's participants and assignments with the
// desired state, inside the caller's transaction. Participants absent from
// desired are removed with their assignments; assignments are diffed by
// (participant, slot) so untouched claims keep their original rows. A dish
// name change is a remove-then-add on the same key.
func reconcile(ctx context.Context, txRepo *repository.Repository, reg *model.Registration, desired []desiredParticipant) error {
	current, err := txRepo.Participant.ListByRegistration(ctx, reg.RegistrationID)
	if err != nil {
		return err
	}
	assignments, err := txRepo.Assignment.ListByRegistration(ctx, reg.RegistrationID)
	if err != nil {
		return err
	}

	byName := make(map[string]*model.Participant, len(current))
	for i := range current {
		byName[strings.ToLower(current[i].Name)] = &current[i]
	}
	held := make(map[model.AssignmentKey]string, len(assignments)) // key → dish
	for i := range assignments {
		held[assignments[i].Key()] = assignments[i].DishName
	}

	wanted := make(map[string]bool, len(desired))
	var toAdd []model.Assignment
	var toRemove []model.AssignmentKey

	for _, dp := range desired {
		wanted[strings.ToLower(dp.Name)] = true
		participant := byName[strings.ToLower(dp.Name)]
		if participant == nil {
			participant = &model.Participant{RegistrationID: reg.RegistrationID, Name: dp.Name}
			if err := txRepo.Participant.Create(ctx, participant); err != nil {
				return err
			}
		}

		keep := make(map[string]bool, len(dp.Choices))
		for _, c := range dp.Choices {
			keep[c.SlotID] = true
			key := model.AssignmentKey{ParticipantID: participant.ParticipantID, SlotID: c.SlotID}
			dish, exists := held[key]
			switch {
			case !exists:
				toAdd = append(toAdd, model.Assignment{
					ParticipantID: participant.ParticipantID,
					SlotID:        c.SlotID,
					DishName:      c.DishName,
				})
			case dish != c.DishName:
				toRemove = append(toRemove, key)
				toAdd = append(toAdd, model.Assignment{
					ParticipantID: participant.ParticipantID,
					SlotID:        c.SlotID,
					DishName:      c.DishName,
				})
			}
		}
		for key := range held {
			if key.ParticipantID == participant.ParticipantID && !keep[key.SlotID] {
				toRemove = append(toRemove, key)
			}
		}
	}

	// Participants dropped from the desired state go away entirely.
	for i := range current {
		if !wanted[strings.ToLower(current[i].Name)] {
			if err := txRepo.Assignment.DeleteByParticipant(ctx, current[i].ParticipantID); err != nil {
				return err
			}
			if err := txRepo.Participant.Delete(ctx, current[i].ParticipantID); err != nil {
				return err
			}
		}
	}

	if err := txRepo.Assignment.DeleteByKeys(ctx, toRemove); err != nil {
		return err
	}
	return txRepo.Assignment.BatchCreate(ctx, toAdd)
}

// ownCounts tallies how many of the registration's assignments sit on each
// slot, the baseline a capacity check subtracts before judging net increase.
func ownCounts(assignments []model.Assignment) map[string]int {
	counts := make(map[string]int, len(assignments))
	for i := range assignments {
		counts[assignments[i].SlotID]++
	}
	return counts
}
