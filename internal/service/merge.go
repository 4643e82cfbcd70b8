package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/harvestChurchAdmin/volunteer-event-management-sub000/internal/model"
	"github.com/harvestChurchAdmin/volunteer-event-management-sub000/internal/repository"
)

// mergeGroup folds a group of registrations sharing (event, lower(email))
// into one survivor, inside the caller's transaction. regs must be ordered
// oldest first; preferredID names the survivor if it is in the group,
// otherwise the oldest wins. Participants are matched case-insensitively by
// name, assignments carried over minus duplicates. Idempotent: a group of
// one is returned untouched.
func mergeGroup(ctx context.Context, txRepo *repository.Repository, regs []model.Registration, preferredID string, logger *zap.Logger) (string, int, error) {
	if len(regs) == 0 {
		return "", 0, nil
	}
	survivor := &regs[0]
	for i := range regs {
		if regs[i].RegistrationID == preferredID {
			survivor = &regs[i]
			break
		}
	}
	if len(regs) == 1 {
		return survivor.RegistrationID, 0, nil
	}

	survivorParticipants, err := txRepo.Participant.ListByRegistration(ctx, survivor.RegistrationID)
	if err != nil {
		return "", 0, err
	}
	byName := make(map[string]*model.Participant, len(survivorParticipants))
	for i := range survivorParticipants {
		byName[strings.ToLower(survivorParticipants[i].Name)] = &survivorParticipants[i]
	}
	heldSlots, err := txRepo.Assignment.ListByRegistration(ctx, survivor.RegistrationID)
	if err != nil {
		return "", 0, err
	}
	held := make(map[model.AssignmentKey]bool, len(heldSlots))
	for i := range heldSlots {
		held[heldSlots[i].Key()] = true
	}

	merged := 0
	for i := range regs {
		loser := &regs[i]
		if loser.RegistrationID == survivor.RegistrationID {
			continue
		}
		participants, err := txRepo.Participant.ListByRegistration(ctx, loser.RegistrationID)
		if err != nil {
			return "", 0, err
		}
		loserAssignments, err := txRepo.Assignment.ListByRegistration(ctx, loser.RegistrationID)
		if err != nil {
			return "", 0, err
		}
		byParticipant := make(map[string][]model.Assignment)
		for _, a := range loserAssignments {
			byParticipant[a.ParticipantID] = append(byParticipant[a.ParticipantID], a)
		}
		for j := range participants {
			lp := &participants[j]
			sp := byName[strings.ToLower(lp.Name)]
			if sp == nil {
				// No namesake on the survivor side: move the participant row
				// whole, assignments and all.
				lp.RegistrationID = survivor.RegistrationID
				if err := txRepo.Participant.Update(ctx, lp); err != nil {
					return "", 0, err
				}
				byName[strings.ToLower(lp.Name)] = lp
				for _, a := range byParticipant[lp.ParticipantID] {
					held[a.Key()] = true
				}
				continue
			}
			// Same person on both sides: carry over only the slots the
			// survivor's copy does not already hold, then drop the duplicate.
			if err := carryAssignments(ctx, txRepo, byParticipant[lp.ParticipantID], sp, held); err != nil {
				return "", 0, err
			}
			if err := txRepo.Assignment.DeleteByParticipant(ctx, lp.ParticipantID); err != nil {
				return "", 0, err
			}
			if err := txRepo.Participant.Delete(ctx, lp.ParticipantID); err != nil {
				return "", 0, err
			}
		}
		if err := txRepo.Registration.Delete(ctx, loser.RegistrationID); err != nil {
			return "", 0, err
		}
		merged++
	}

	logger.Info("merged duplicate registrations",
		zap.String("survivor_id", survivor.RegistrationID),
		zap.Int("merged", merged))
	return survivor.RegistrationID, merged, nil
}

func carryAssignments(ctx context.Context, txRepo *repository.Repository, from []model.Assignment, to *model.Participant, held map[model.AssignmentKey]bool) error {
	var carried []model.Assignment
	for i := range from {
		key := model.AssignmentKey{ParticipantID: to.ParticipantID, SlotID: from[i].SlotID}
		if held[key] {
			continue
		}
		held[key] = true
		carried = append(carried, model.Assignment{
			ParticipantID: to.ParticipantID,
			SlotID:        from[i].SlotID,
			DishName:      from[i].DishName,
		})
	}
	return txRepo.Assignment.BatchCreate(ctx, carried)
}
