package projections

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"sportsday/internal/domain/export"
	"sportsday/internal/domain/registration"
)

// ExportColumns is the fixed header of the registration CSV.
var ExportColumns = []string{
	"ID",
	"Full Name",
	"Email",
	"Phone",
	"Department",
	"Gender",
	"T-Shirt Size",
	"Bringing Kids",
	"Number of Kids",
	"Kids Details",
	"Entertainment Sports",
	"Interested in Competing",
	"Competitive Sports",
	"Last Exercise",
	"Medical Conditions",
	"Current Medications",
	"Previous Injuries",
	"Physical Limitations",
	"Health Concerns",
	"Has Medical Conditions",
	"Has Heart Condition",
	"Has Chest Pain",
	"Has Balance Issues",
	"Has Other Health Info",
	"Is Taking Medications",
	"Has Immediate Health Concerns",
	"Guardian Name",
	"Guardian Signature",
	"Emergency Contact Name",
	"Emergency Contact Phone",
	"Emergency Contact Relation",
	"Doctor Clearance",
}

// ExportRegistrationsDeps holds dependencies for ExportRegistrations.
type ExportRegistrationsDeps struct {
	Store RegistrationStore
}

// QueryExportRegistrations builds the CSV document of all registrations.
// PRE: none
// POST: One row per stored record, in insertion order
// INVARIANT: Every row has len(ExportColumns) cells
func QueryExportRegistrations(ctx context.Context, deps ExportRegistrationsDeps) (export.Document, error) {
	regs, err := deps.Store.List(ctx)
	if err != nil {
		return export.Document{}, err
	}

	doc := export.Document{
		Columns: ExportColumns,
		Rows:    make([][]string, 0, len(regs)),
	}
	for _, r := range regs {
		doc.Rows = append(doc.Rows, exportRow(r))
	}
	return doc, doc.Validate()
}

func exportRow(r registration.Registration) []string {
	return []string{
		r.ID,
		r.FullName,
		r.Email,
		r.Phone,
		r.Department,
		r.Gender,
		r.ParentTshirtSize,
		export.YesNo(r.BringingKids),
		optionalInt(r.NumberOfKids),
		kidsDetails(r.Kids),
		strings.Join(r.EntertainmentSports, ", "),
		export.YesNo(r.InterestedInCompeting),
		strings.Join(r.CompetitiveSports, ", "),
		r.LastExercise,
		strings.Join(r.MedicalConditions, ", "),
		r.CurrentMedications,
		r.PreviousInjuries,
		r.PhysicalLimitations,
		r.HealthConcerns,
		export.YesNo(registration.Flag(r.HasMedicalConditions)),
		export.YesNo(registration.Flag(r.HasHeartCondition)),
		export.YesNo(registration.Flag(r.HasChestPain)),
		export.YesNo(registration.Flag(r.HasBalanceIssues)),
		export.YesNo(registration.Flag(r.HasOtherHealthInfo)),
		export.YesNo(registration.Flag(r.IsTakingMedications)),
		export.YesNo(registration.Flag(r.HasImmediateHealthConcerns)),
		r.GuardianName,
		r.GuardianSignature,
		r.EmergencyContactName,
		r.EmergencyContactPhone,
		r.EmergencyContactRelation,
		export.YesNo(r.DoctorClearance),
	}
}

func optionalInt(n *int) string {
	if n == nil {
		return ""
	}
	return strconv.Itoa(*n)
}

func kidsDetails(kids []registration.Kid) string {
	parts := make([]string, 0, len(kids))
	for _, k := range kids {
		parts = append(parts, fmt.Sprintf("Name: %s, Age: %d, Gender: %s, Size: %s", k.Name, k.Age, k.Gender, k.TshirtSize))
	}
	return strings.Join(parts, "; ")
}
