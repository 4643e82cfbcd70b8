package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/harvestChurchAdmin/volunteer-event-management-sub000/internal/model"
	"github.com/harvestChurchAdmin/volunteer-event-management-sub000/internal/repository"
)

// ── Export module errors ──

var (
	ErrExportNoRegistrations = errors.New("event has no registrations to export")
)

// ExportService produces the coordinator's roster workbook.
//
// The export returns a bytes.Buffer; the handler sets the HTTP headers and
// streams it out. One sheet per station, one row per assignment, plus a
// summary sheet of slot fill levels.
type ExportService interface {
	ExportRoster(ctx context.Context, eventID string) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService creates an ExportService instance.
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

func (s *exportService) ExportRoster(ctx context.Context, eventID string) (*bytes.Buffer, string, error) {
	event, err := s.repo.Event.GetWithStations(ctx, eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrEventNotFound
		}
		s.logger.Error("load event for export failed", zap.Error(err))
		return nil, "", err
	}
	regs, err := s.repo.Registration.ListByEvent(ctx, eventID)
	if err != nil {
		s.logger.Error("load registrations for export failed", zap.Error(err))
		return nil, "", err
	}
	if len(regs) == 0 {
		return nil, "", ErrExportNoRegistrations
	}

	// Index: slot id → rows of (participant, contact, dish).
	type rosterRow struct {
		participant string
		contact     string
		email       string
		phone       string
		dish        string
	}
	bySlot := make(map[string][]rosterRow)
	for i := range regs {
		reg := &regs[i]
		for j := range reg.Participants {
			p := &reg.Participants[j]
			for k := range p.Assignments {
				a := &p.Assignments[k]
				bySlot[a.SlotID] = append(bySlot[a.SlotID], rosterRow{
					participant: p.Name,
					contact:     reg.ContactName,
					email:       reg.ContactEmail,
					phone:       reg.ContactPhone,
					dish:        a.DishName,
				})
			}
		}
	}

	f := excelize.NewFile()
	defer f.Close()

	summary := "Summary"
	f.SetSheetName("Sheet1", summary)
	writeHeader(f, summary, []string{"Station", "Slot", "Needed", "Reserved", "Remaining"})
	summaryRow := 2

	for i := range event.Stations {
		station := &event.Stations[i]
		sheet := sheetName(station.Name, i)
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, "", err
		}
		header := []string{"Slot", "Participant", "Contact", "Email", "Phone"}
		if event.IsPotluck() {
			header = append(header, "Dish")
		}
		writeHeader(f, sheet, header)

		row := 2
		for j := range station.Slots {
			slot := &station.Slots[j]
			label := slotTitle(slot)
			rows := bySlot[slot.SlotID]

			cell, _ := excelize.CoordinatesToCellName(1, summaryRow)
			_ = f.SetSheetRow(summary, cell, &[]interface{}{
				station.Name, label, slot.CapacityNeeded, len(rows), slot.CapacityNeeded - len(rows),
			})
			summaryRow++

			for _, r := range rows {
				values := []interface{}{label, r.participant, r.contact, r.email, r.phone}
				if event.IsPotluck() {
					values = append(values, r.dish)
				}
				cell, _ := excelize.CoordinatesToCellName(1, row)
				_ = f.SetSheetRow(sheet, cell, &values)
				row++
			}
		}
		_ = f.SetColWidth(sheet, "A", "F", 24)
	}
	_ = f.SetColWidth(summary, "A", "E", 20)

	buf, err := f.WriteToBuffer()
	if err != nil {
		s.logger.Error("write roster workbook failed", zap.Error(err))
		return nil, "", err
	}
	filename := fmt.Sprintf("roster-%s-%s.xlsx", event.EventID[:8], time.Now().Format("20060102"))
	return buf, filename, nil
}

func writeHeader(f *excelize.File, sheet string, cols []string) {
	values := make([]interface{}, len(cols))
	for i, c := range cols {
		values[i] = c
	}
	_ = f.SetSheetRow(sheet, "A1", &values)
}

func slotTitle(slot *model.Slot) string {
	if slot.Title != "" {
		return slot.Title
	}
	if slot.HasTimeRange() {
		return slot.StartsAt.Format("Mon Jan 2 15:04") + " - " + slot.EndsAt.Format("15:04")
	}
	return slot.SlotID
}

// sheetName keeps sheet names unique and inside excelize's 31-char limit.
func sheetName(name string, idx int) string {
	if len(name) > 25 {
		name = name[:25]
	}
	return fmt.Sprintf("%d %s", idx+1, name)
}
