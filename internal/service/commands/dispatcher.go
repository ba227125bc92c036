// Package commands executes parsed text commands against the domain services
// and renders human-readable replies. All input validation of required fields
// happens here, at the presentation boundary; the services below trust their
// callers.
package commands

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mbacelar/herdlog/internal/domain/models"
	"github.com/mbacelar/herdlog/internal/service/breeding"
	"github.com/mbacelar/herdlog/internal/service/farms"
	"github.com/mbacelar/herdlog/internal/service/health"
	"github.com/mbacelar/herdlog/internal/service/history"
	"github.com/mbacelar/herdlog/internal/service/pastures"
	"github.com/mbacelar/herdlog/internal/storage"
)

// ErrInvalidArguments indicates the command payload could not be parsed.
var ErrInvalidArguments = errors.New("invalid command arguments")

// ErrUnsupportedCommand indicates we do not support the requested command.
var ErrUnsupportedCommand = errors.New("unsupported command")

// Resetter wipes persisted buckets; satisfied by the local store.
type Resetter interface {
	Reset(buckets ...string) error
}

// Service implements the command dispatcher.
type Service struct {
	farms     *farms.Service
	pastures  *pastures.Service
	breeding  *breeding.Service
	health    *health.Service
	histSvc   *history.Service
	store     Resetter
	loc       *time.Location
	logger    *zap.Logger
	now       func() time.Time
}

// NewService constructs a command dispatcher.
func NewService(
	farmSvc *farms.Service,
	pastureSvc *pastures.Service,
	breedingSvc *breeding.Service,
	healthSvc *health.Service,
	histSvc *history.Service,
	store Resetter,
	loc *time.Location,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.Local
	}
	return &Service{
		farms:    farmSvc,
		pastures: pastureSvc,
		breeding: breedingSvc,
		health:   healthSvc,
		histSvc:  histSvc,
		store:    store,
		loc:      loc,
		logger:   logger,
		now:      time.Now,
	}
}

// HandleCommand executes the command and returns the reply text.
func (s *Service) HandleCommand(cmd models.Command) (string, error) {
	s.logger.Debug("dispatching command", zap.String("command", string(cmd.Type)), zap.Strings("args", cmd.Args))

	switch cmd.Type {
	case models.CommandFarm:
		return s.handleFarm(cmd.Args)
	case models.CommandPasture:
		return s.handlePasture(cmd.Args)
	case models.CommandPregnancy:
		return s.handlePregnancy(cmd.Args)
	case models.CommandDisease:
		return s.handleDisease(cmd.Args)
	case models.CommandHistory:
		return s.handleHistory(cmd.Args)
	case models.CommandReset:
		return s.handleReset(cmd.Args)
	default:
		return "", ErrUnsupportedCommand
	}
}

func (s *Service) handleFarm(args []string) (string, error) {
	if len(args) == 0 {
		return "", fmt.Errorf("%w: farm needs a subcommand (add, list, select, update, remove)", ErrInvalidArguments)
	}

	switch strings.ToLower(args[0]) {
	case "add":
		if len(args) < 2 || strings.TrimSpace(args[1]) == "" {
			return "", fmt.Errorf("%w: farm add <name> [location=... notes=...]", ErrInvalidArguments)
		}
		fields := parseFields(args[2:])
		farm := models.Farm{Name: args[1], Location: fields["location"], Notes: fields["notes"]}

		stored, err := s.farms.Add(farm)
		if err != nil {
			return "", err
		}
		message := fmt.Sprintf("Farm %q registered with id %s.", stored.Name, stored.ID)
		if len(s.farms.List()) == 1 {
			if err := s.farms.SetActiveFarm(stored.ID); err == nil {
				message += " Selected as the active farm."
			}
		}
		return message, nil

	case "list":
		farmList := s.farms.List()
		if len(farmList) == 0 {
			return "No farm registered yet. Run 'farm add <name>' to get started.", nil
		}
		active := s.farms.ActiveFarm()
		var b strings.Builder
		b.WriteString("Farms:\n")
		for _, f := range farmList {
			marker := "  "
			if f.ID == active {
				marker = "* "
			}
			b.WriteString(fmt.Sprintf("%s%s  %s", marker, f.ID, f.Name))
			if f.Location != "" {
				b.WriteString("  (" + f.Location + ")")
			}
			b.WriteString("\n")
		}
		return strings.TrimRight(b.String(), "\n"), nil

	case "select":
		if len(args) < 2 {
			return "", fmt.Errorf("%w: farm select <id>", ErrInvalidArguments)
		}
		farm, found := s.farms.Find(args[1])
		if !found {
			return "", fmt.Errorf("%w: unknown farm id %s", ErrInvalidArguments, args[1])
		}
		if err := s.farms.SetActiveFarm(farm.ID); err != nil {
			return "", err
		}
		return fmt.Sprintf("Active farm set to %q.", farm.Name), nil

	case "update":
		if len(args) < 3 {
			return "", fmt.Errorf("%w: farm update <id> name=... location=... notes=...", ErrInvalidArguments)
		}
		fields := parseFields(args[2:])
		patch := models.FarmPatch{
			Name:     strField(fields, "name"),
			Location: strField(fields, "location"),
			Notes:    strField(fields, "notes"),
		}
		if err := s.farms.Update(args[1], patch); err != nil {
			return "", err
		}
		return "Farm updated.", nil

	case "remove":
		if len(args) < 2 {
			return "", fmt.Errorf("%w: farm remove <id>", ErrInvalidArguments)
		}
		if err := s.farms.Remove(args[1]); err != nil {
			return "", err
		}
		return "Farm removed. Linked pastures, pregnancies and diseases were kept.", nil

	default:
		return "", fmt.Errorf("%w: farm %s", ErrUnsupportedCommand, args[0])
	}
}

func (s *Service) handlePasture(args []string) (string, error) {
	if len(args) == 0 {
		return "", fmt.Errorf("%w: pasture needs a subcommand (add, list, update, remove)", ErrInvalidArguments)
	}

	switch strings.ToLower(args[0]) {
	case "add":
		if len(args) < 2 || strings.TrimSpace(args[1]) == "" {
			return "", fmt.Errorf("%w: pasture add <name> [large=N small=N area=H notes=...]", ErrInvalidArguments)
		}
		fields := parseFields(args[2:])
		p := models.Pasture{Name: args[1], Notes: fields["notes"]}

		var err error
		if p.LargeAnimalCount, err = intField(fields, "large"); err != nil {
			return "", err
		}
		if p.SmallAnimalCount, err = intField(fields, "small"); err != nil {
			return "", err
		}
		if area, ok := fields["area"]; ok {
			v, err := strconv.ParseFloat(area, 64)
			if err != nil {
				return "", fmt.Errorf("%w: area %q is not a number", ErrInvalidArguments, area)
			}
			p.AreaHectares = &v
		}

		stored, err := s.pastures.Add(p)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Pasture %q registered with id %s (%d animals).", stored.Name, stored.ID, stored.TotalAnimals()), nil

	case "list":
		summaries := s.pastures.Summaries()
		if len(summaries) == 0 {
			return "No pasture registered yet.", nil
		}
		var b strings.Builder
		b.WriteString("Pastures:\n")
		for _, sum := range summaries {
			b.WriteString(fmt.Sprintf("  %s  %s  %d animals (%d large, %d small)  pregnancies %d  diseases %d",
				sum.ID, sum.Name, sum.TotalAnimals, sum.LargeAnimalCount, sum.SmallAnimalCount,
				sum.PregnancyCount, sum.DiseaseCount))
			if sum.AreaHectares != nil {
				b.WriteString(fmt.Sprintf("  %.1f ha", *sum.AreaHectares))
			}
			b.WriteString("\n")
		}
		return strings.TrimRight(b.String(), "\n"), nil

	case "update":
		if len(args) < 3 {
			return "", fmt.Errorf("%w: pasture update <id> name=... large=N small=N area=H notes=...", ErrInvalidArguments)
		}
		fields := parseFields(args[2:])
		patch := models.PasturePatch{
			Name:  strField(fields, "name"),
			Notes: strField(fields, "notes"),
		}
		if raw, ok := fields["large"]; ok {
			v, err := strconv.Atoi(raw)
			if err != nil || v < 0 {
				return "", fmt.Errorf("%w: large %q is not a valid count", ErrInvalidArguments, raw)
			}
			patch.LargeAnimalCount = &v
		}
		if raw, ok := fields["small"]; ok {
			v, err := strconv.Atoi(raw)
			if err != nil || v < 0 {
				return "", fmt.Errorf("%w: small %q is not a valid count", ErrInvalidArguments, raw)
			}
			patch.SmallAnimalCount = &v
		}
		if raw, ok := fields["area"]; ok {
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return "", fmt.Errorf("%w: area %q is not a number", ErrInvalidArguments, raw)
			}
			patch.AreaHectares = &v
		}
		if err := s.pastures.Update(args[1], patch); err != nil {
			return "", err
		}
		return "Pasture updated.", nil

	case "remove":
		if len(args) < 2 {
			return "", fmt.Errorf("%w: pasture remove <id>", ErrInvalidArguments)
		}
		if err := s.pastures.Remove(args[1]); err != nil {
			return "", err
		}
		return "Pasture removed. Records linked to it keep their reference.", nil

	default:
		return "", fmt.Errorf("%w: pasture %s", ErrUnsupportedCommand, args[0])
	}
}

func (s *Service) handlePregnancy(args []string) (string, error) {
	if len(args) == 0 {
		return "", fmt.Errorf("%w: pregnancy needs a subcommand (add, list, update, remove)", ErrInvalidArguments)
	}

	switch strings.ToLower(args[0]) {
	case "add":
		if len(args) < 2 || strings.TrimSpace(args[1]) == "" {
			return "", fmt.Errorf("%w: pregnancy add <cowId> [bull=... coverage=YYYY-MM-DD due=YYYY-MM-DD pasture=<id> notes=...]", ErrInvalidArguments)
		}
		fields := parseFields(args[2:])
		rec := models.PregnancyRecord{
			CowID:        args[1],
			BullID:       fields["bull"],
			CoverageDate: fields["coverage"],
			DueDate:      fields["due"],
			PastureID:    fields["pasture"],
			Notes:        fields["notes"],
		}

		// Derive the due date from the coverage date unless the user supplied one.
		if rec.DueDate == "" && rec.CoverageDate != "" {
			coverage, err := time.ParseInLocation(breeding.DateLayout, rec.CoverageDate, s.loc)
			if err != nil {
				return "", fmt.Errorf("%w: coverage date %q is not %s", ErrInvalidArguments, rec.CoverageDate, breeding.DateLayout)
			}
			rec.DueDate = breeding.ProjectDueDate(coverage).Format(breeding.DateLayout)
		}

		stored, err := s.breeding.Add(rec)
		if err != nil {
			return "", err
		}

		message := fmt.Sprintf("Pregnancy recorded for cow %s with id %s.", stored.CowID, stored.ID)
		if badge := s.dueBadge(stored.DueDate); badge != "" {
			message += fmt.Sprintf(" Expected calving %s (%s).", stored.DueDate, badge)
		}
		return message, nil

	case "list":
		if s.farms.ActiveFarm() == "" {
			return "Select a farm first: farm select <id>.", nil
		}
		records := s.breeding.List()
		if len(records) == 0 {
			return "No pregnancy recorded for the active farm.", nil
		}
		var b strings.Builder
		b.WriteString("Pregnancies (soonest first):\n")
		for _, r := range records {
			b.WriteString(fmt.Sprintf("  %s  cow %s", r.ID, r.CowID))
			if r.DueDate != "" {
				b.WriteString(fmt.Sprintf("  due %s", r.DueDate))
				if badge := s.dueBadge(r.DueDate); badge != "" {
					b.WriteString("  " + badge)
				}
			}
			if name, ok := s.pastures.NameByID(r.PastureID); ok {
				b.WriteString("  pasture " + name)
			}
			b.WriteString("\n")
		}
		return strings.TrimRight(b.String(), "\n"), nil

	case "update":
		if len(args) < 3 {
			return "", fmt.Errorf("%w: pregnancy update <id> cow=... bull=... coverage=... due=... pasture=... notes=...", ErrInvalidArguments)
		}
		fields := parseFields(args[2:])
		patch := models.PregnancyPatch{
			CowID:        strField(fields, "cow"),
			BullID:       strField(fields, "bull"),
			CoverageDate: strField(fields, "coverage"),
			DueDate:      strField(fields, "due"),
			PastureID:    strField(fields, "pasture"),
			Notes:        strField(fields, "notes"),
		}

		// A coverage change re-projects the due date unless one was supplied
		// alongside it; the user's explicit value always wins.
		if patch.CoverageDate != nil && patch.DueDate == nil {
			coverage, err := time.ParseInLocation(breeding.DateLayout, *patch.CoverageDate, s.loc)
			if err != nil {
				return "", fmt.Errorf("%w: coverage date %q is not %s", ErrInvalidArguments, *patch.CoverageDate, breeding.DateLayout)
			}
			due := breeding.ProjectDueDate(coverage).Format(breeding.DateLayout)
			patch.DueDate = &due
		}

		if err := s.breeding.Update(args[1], patch); err != nil {
			return "", err
		}
		return "Pregnancy record updated.", nil

	case "remove":
		if len(args) < 2 {
			return "", fmt.Errorf("%w: pregnancy remove <id>", ErrInvalidArguments)
		}
		if err := s.breeding.Remove(args[1]); err != nil {
			return "", err
		}
		return "Pregnancy record removed.", nil

	default:
		return "", fmt.Errorf("%w: pregnancy %s", ErrUnsupportedCommand, args[0])
	}
}

func (s *Service) handleDisease(args []string) (string, error) {
	if len(args) == 0 {
		return "", fmt.Errorf("%w: disease needs a subcommand (add, list, update, remove)", ErrInvalidArguments)
	}

	switch strings.ToLower(args[0]) {
	case "add":
		if len(args) < 3 {
			return "", fmt.Errorf("%w: disease add <animalId> <diseaseName> [date=YYYY-MM-DD status=active|in_treatment|cured treatment=... vet=... pasture=... notes=...]", ErrInvalidArguments)
		}
		fields := parseFields(args[3:])
		rec := models.DiseaseRecord{
			AnimalID:     args[1],
			DiseaseName:  args[2],
			RecordDate:   fields["date"],
			Status:       models.DiseaseStatus(fields["status"]),
			Treatment:    fields["treatment"],
			Veterinarian: fields["vet"],
			PastureID:    fields["pasture"],
			Notes:        fields["notes"],
		}
		if rec.RecordDate == "" {
			rec.RecordDate = s.now().In(s.loc).Format(breeding.DateLayout)
		}
		if rec.Status == "" {
			rec.Status = models.StatusActive
		}
		if !rec.Status.Valid() {
			return "", fmt.Errorf("%w: status %q (want active, in_treatment or cured)", ErrInvalidArguments, rec.Status)
		}

		stored, err := s.health.Add(rec)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Disease %q recorded for animal %s with id %s (%s).",
			stored.DiseaseName, stored.AnimalID, stored.ID, stored.Status.Label()), nil

	case "list":
		if s.farms.ActiveFarm() == "" {
			return "Select a farm first: farm select <id>.", nil
		}
		records := s.health.List()
		if len(records) == 0 {
			return "No disease recorded for the active farm.", nil
		}
		var b strings.Builder
		b.WriteString("Diseases (most recent first):\n")
		for _, r := range records {
			b.WriteString(fmt.Sprintf("  %s  %s  animal %s  %s  [%s]", r.ID, r.RecordDate, r.AnimalID, r.DiseaseName, r.Status.Label()))
			if name, ok := s.pastures.NameByID(r.PastureID); ok {
				b.WriteString("  pasture " + name)
			}
			b.WriteString("\n")
		}
		return strings.TrimRight(b.String(), "\n"), nil

	case "update":
		if len(args) < 3 {
			return "", fmt.Errorf("%w: disease update <id> animal=... disease=... date=... status=... treatment=... vet=... pasture=... notes=...", ErrInvalidArguments)
		}
		fields := parseFields(args[2:])
		patch := models.DiseasePatch{
			AnimalID:     strField(fields, "animal"),
			DiseaseName:  strField(fields, "disease"),
			RecordDate:   strField(fields, "date"),
			Treatment:    strField(fields, "treatment"),
			Veterinarian: strField(fields, "vet"),
			PastureID:    strField(fields, "pasture"),
			Notes:        strField(fields, "notes"),
		}
		if raw, ok := fields["status"]; ok {
			status := models.DiseaseStatus(raw)
			if !status.Valid() {
				return "", fmt.Errorf("%w: status %q (want active, in_treatment or cured)", ErrInvalidArguments, raw)
			}
			patch.Status = &status
		}
		if err := s.health.Update(args[1], patch); err != nil {
			return "", err
		}
		return "Disease record updated.", nil

	case "remove":
		if len(args) < 2 {
			return "", fmt.Errorf("%w: disease remove <id>", ErrInvalidArguments)
		}
		if err := s.health.Remove(args[1]); err != nil {
			return "", err
		}
		return "Disease record removed.", nil

	default:
		return "", fmt.Errorf("%w: disease %s", ErrUnsupportedCommand, args[0])
	}
}

func (s *Service) handleHistory(args []string) (string, error) {
	var filter models.EntryType
	if len(args) > 0 {
		filter = models.EntryType(strings.ToLower(args[0]))
		if !filter.Valid() {
			return "", fmt.Errorf("%w: history [pasture|pregnancy|disease]", ErrInvalidArguments)
		}
	}

	entries := s.histSvc.List(filter)
	if len(entries) == 0 {
		return "No history yet. Your notes will appear here.", nil
	}

	var b strings.Builder
	for _, group := range s.histSvc.GroupByDay(entries, s.now()) {
		b.WriteString(group.Label + "\n")
		for _, entry := range group.Entries {
			b.WriteString(fmt.Sprintf("  %s  %s\n", entry.CreatedAt.In(s.loc).Format("15:04"), entry.Description))
		}
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func (s *Service) handleReset(args []string) (string, error) {
	if len(args) == 0 || strings.ToLower(args[0]) != "confirm" {
		return "This wipes every farm, pasture, pregnancy, disease and history record. Run 'reset confirm' to proceed.", nil
	}

	buckets := append(append([]string{}, storage.CollectionBuckets...), storage.BucketActiveFarm)
	if err := s.store.Reset(buckets...); err != nil {
		return "", fmt.Errorf("reset store: %w", err)
	}
	return "All data cleared.", nil
}

// dueBadge renders the days-remaining status for a due date, or "" when the
// date is absent or unparseable.
func (s *Service) dueBadge(dueDate string) string {
	due, err := time.ParseInLocation(breeding.DateLayout, dueDate, s.loc)
	if err != nil {
		return ""
	}
	days := breeding.DaysRemaining(due, s.now().In(s.loc))
	switch breeding.ClassifyDueDate(days) {
	case breeding.DueOverdue:
		return "overdue"
	case breeding.DueUrgent:
		return fmt.Sprintf("%d days, urgent", days)
	default:
		return fmt.Sprintf("%d days", days)
	}
}

// parseFields splits key=value tokens into a lookup map. Keys are lowercased;
// values keep their casing. Tokens without '=' are ignored.
func parseFields(args []string) map[string]string {
	fields := make(map[string]string, len(args))
	for _, arg := range args {
		key, value, found := strings.Cut(arg, "=")
		if !found {
			continue
		}
		fields[strings.ToLower(strings.TrimSpace(key))] = value
	}
	return fields
}

// strField returns a pointer to the field value when the key was supplied.
func strField(fields map[string]string, key string) *string {
	if value, ok := fields[key]; ok {
		return &value
	}
	return nil
}

// intField parses an optional non-negative integer field, defaulting to 0.
func intField(fields map[string]string, key string) (int, error) {
	raw, ok := fields[key]
	if !ok {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("%w: %s %q is not a valid count", ErrInvalidArguments, key, raw)
	}
	return v, nil
}
