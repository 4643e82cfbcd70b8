package service

import (
	"strings"

	"github.com/harvestChurchAdmin/volunteer-event-management-sub000/internal/dto"
	"github.com/harvestChurchAdmin/volunteer-event-management-sub000/internal/model"
	"github.com/harvestChurchAdmin/volunteer-event-management-sub000/internal/repository"
	pkgerr "github.com/harvestChurchAdmin/volunteer-event-management-sub000/pkg/errors"
)

// ── Desired state ──

// desiredChoice is one normalized slot claim.
type desiredChoice struct {
	SlotID   string
	DishName string
}

// desiredParticipant is one person's wanted slot set after normalization:
// names trimmed, duplicate slot picks folded to one.
type desiredParticipant struct {
	Name    string
	Choices []desiredChoice
}

// normalizeDesired folds the request into the canonical desired state.
// Duplicate participant names (case-insensitive) and duplicate slot picks
// within one participant collapse silently, so double-clicked submissions
// reconcile to the same outcome.
func normalizeDesired(participants []dto.ParticipantSignup) ([]desiredParticipant, error) {
	out := make([]desiredParticipant, 0, len(participants))
	seenNames := make(map[string]int)
	for _, p := range participants {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			return nil, pkgerr.Validationf("participant name must not be blank")
		}
		key := strings.ToLower(name)
		idx, dup := seenNames[key]
		if !dup {
			seenNames[key] = len(out)
			out = append(out, desiredParticipant{Name: name})
			idx = len(out) - 1
		}
		seenSlots := make(map[string]bool, len(out[idx].Choices))
		for _, c := range out[idx].Choices {
			seenSlots[c.SlotID] = true
		}
		for _, c := range p.Choices {
			if seenSlots[c.SlotID] {
				continue
			}
			seenSlots[c.SlotID] = true
			out[idx].Choices = append(out[idx].Choices, desiredChoice{
				SlotID:   c.SlotID,
				DishName: strings.TrimSpace(c.DishName),
			})
		}
	}
	return out, nil
}

// desiredSlotIDs collects the distinct slot ids across all participants.
func desiredSlotIDs(desired []desiredParticipant) []string {
	seen := make(map[string]bool)
	var ids []string
	for _, p := range desired {
		for _, c := range p.Choices {
			if !seen[c.SlotID] {
				seen[c.SlotID] = true
				ids = append(ids, c.SlotID)
			}
		}
	}
	return ids
}

// ── Conflict checker ──

// checkChoices validates the desired state against the locked slot rows:
// every slot must belong to the event, potluck slots need a dish name, and
// no participant may claim two time ranges that overlap. Pure over its
// inputs; the caller locks and loads.
func checkChoices(eventID string, infos map[string]repository.SlotInfo, desired []desiredParticipant) error {
	for _, p := range desired {
		for _, c := range p.Choices {
			info, ok := infos[c.SlotID]
			if !ok || info.EventID != eventID {
				return pkgerr.Validationf("slot %s does not belong to this event", c.SlotID)
			}
			if info.SignupMode == model.SignupModePotluck && c.DishName == "" {
				return pkgerr.Validationf("slot %q requires a dish name", info.Title)
			}
			if info.SignupMode != model.SignupModePotluck && c.DishName != "" {
				return pkgerr.Validationf("dish names only apply to potluck slots")
			}
		}
		if err := checkOverlap(p.Name, p.Choices, infos); err != nil {
			return err
		}
	}
	return nil
}

// checkOverlap rejects a participant holding two slots whose [start, end)
// ranges intersect. Abutting ranges are fine; slots without a time range
// never overlap anything.
func checkOverlap(name string, choices []desiredChoice, infos map[string]repository.SlotInfo) error {
	for i := 0; i < len(choices); i++ {
		a := infos[choices[i].SlotID]
		if !a.HasTimeRange() {
			continue
		}
		for j := i + 1; j < len(choices); j++ {
			b := infos[choices[j].SlotID]
			if !b.HasTimeRange() {
				continue
			}
			if a.StartsAt.Before(*b.EndsAt) && b.StartsAt.Before(*a.EndsAt) {
				return pkgerr.Conflictf("%s has overlapping time slots", name)
			}
		}
	}
	return nil
}

// checkCapacity enforces the reservation rule per slot: re-confirming seats
// the registration already holds never conflicts, but any net increase must
// fit the remaining capacity. reserved counts every assignment row; own
// counts only this registration's rows, which are about to be replaced by
// the desired state.
func checkCapacity(infos map[string]repository.SlotInfo, reserved, own map[string]int, desired []desiredParticipant) error {
	want := make(map[string]int)
	for _, p := range desired {
		for _, c := range p.Choices {
			want[c.SlotID]++
		}
	}
	for slotID, n := range want {
		info := infos[slotID]
		if n <= own[slotID] {
			continue
		}
		others := reserved[slotID] - own[slotID]
		if others+n > info.CapacityNeeded {
			return pkgerr.Conflictf("slot %s is full", slotLabel(info))
		}
	}
	return nil
}

func slotLabel(info repository.SlotInfo) string {
	if info.Title != "" {
		return info.Title
	}
	if info.HasTimeRange() {
		return info.StartsAt.Format("Jan 2 15:04") + "–" + info.EndsAt.Format("15:04")
	}
	return info.SlotID
}
