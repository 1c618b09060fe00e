package ledger

import (
	"encoding/json"
	"fmt"

	"github.com/yigit/transcriptledger/internal/app/models"
)

// apply folds one entry into the in-memory state and returns its event.
// It checks the structural preconditions of each kind and leaves the state
// untouched when they fail. Role checks are not repeated here: an entry
// in the journal was authorized when it was written.
func (r *Registry) apply(e Entry) (Event, error) {
	var (
		data any
		err  error
	)
	switch e.Kind {
	case EventInstitutionRegistered:
		data, err = applyAs(e, r.applyInstitutionRegistered)
	case EventInstitutionDeactivated:
		data, err = applyAs(e, r.applyInstitutionDeactivated)
	case EventStudentRegistered:
		data, err = applyAs(e, r.applyStudentRegistered)
	case EventTranscriptCreated:
		data, err = applyAs(e, r.applyTranscriptCreated)
	case EventCourseAdded:
		data, err = applyAs(e, r.applyCourseAdded)
	case EventGraduationDateSet:
		data, err = applyAs(e, r.applyGraduationDateSet)
	case EventTranscriptVerified:
		data, err = applyAs(e, r.applyTranscriptVerified)
	case EventRoleGranted:
		data, err = applyAs(e, r.applyRoleGranted)
	case EventRoleRevoked:
		data, err = applyAs(e, r.applyRoleRevoked)
	default:
		err = fmt.Errorf("unknown entry kind %q", e.Kind)
	}
	if err != nil {
		return Event{}, err
	}
	return Event{Type: e.Kind, Seq: e.Seq, Timestamp: e.RecordedAt, Data: data}, nil
}

func applyAs[T any](e Entry, fn func(Entry, T) error) (T, error) {
	var p T
	if err := json.Unmarshal(e.Payload, &p); err != nil {
		return p, fmt.Errorf("failed to decode %s payload: %w", e.Kind, err)
	}
	return p, fn(e, p)
}

func (r *Registry) applyInstitutionRegistered(e Entry, p InstitutionRegistered) error {
	if p.ID != uint64(len(r.institutions))+1 {
		return fmt.Errorf("institution id %d out of sequence", p.ID)
	}
	if _, ok := r.institutionByAddr[p.Address]; ok {
		return ErrInstitutionAlreadyRegistered
	}
	r.institutions = append(r.institutions, models.Institution{
		ID:                  p.ID,
		Name:                p.Name,
		AccreditationNumber: p.AccreditationNumber,
		Address:             p.Address,
		IsActive:            true,
		CreatedAt:           e.RecordedAt,
	})
	r.institutionByAddr[p.Address] = p.ID
	r.access.grant(models.RoleInstitution, p.Address)
	return nil
}

func (r *Registry) applyInstitutionDeactivated(_ Entry, p InstitutionDeactivated) error {
	inst, err := r.institution(p.ID)
	if err != nil {
		return err
	}
	if !inst.IsActive {
		return ErrAlreadyDeactivated
	}
	inst.IsActive = false
	r.access.revoke(models.RoleInstitution, inst.Address)
	return nil
}

func (r *Registry) applyStudentRegistered(e Entry, p StudentRegistered) error {
	if _, ok := r.students[p.Address]; ok {
		return ErrStudentAlreadyRegistered
	}
	r.students[p.Address] = models.Student{
		Address:      p.Address,
		Name:         p.Name,
		StudentID:    p.StudentID,
		IsRegistered: true,
		RegisteredAt: e.RecordedAt,
	}
	return nil
}

func (r *Registry) applyTranscriptCreated(e Entry, p TranscriptCreated) error {
	if p.TranscriptID != uint64(len(r.transcripts))+1 {
		return fmt.Errorf("transcript id %d out of sequence", p.TranscriptID)
	}
	if _, ok := r.students[p.StudentAddress]; !ok {
		return ErrStudentNotRegistered
	}
	if _, err := r.institution(p.InstitutionID); err != nil {
		return err
	}
	r.transcripts = append(r.transcripts, models.Transcript{
		ID:             p.TranscriptID,
		StudentAddress: p.StudentAddress,
		InstitutionID:  p.InstitutionID,
		Degree:         p.Degree,
		Major:          p.Major,
		Semester:       p.Semester,
		IPFSHash:       p.IPFSHash,
		CreatedAt:      e.RecordedAt,
		UpdatedAt:      e.RecordedAt,
	})
	r.courses = append(r.courses, nil)
	r.studentTranscript[p.StudentAddress] = append(r.studentTranscript[p.StudentAddress], p.TranscriptID)
	return nil
}

func (r *Registry) applyCourseAdded(e Entry, p CourseAdded) error {
	t, err := r.transcript(p.TranscriptID)
	if err != nil {
		return err
	}
	if p.Credits <= 0 {
		return ErrInvalidCredits
	}
	r.courses[p.TranscriptID-1] = append(r.courses[p.TranscriptID-1], models.Course{
		TranscriptID:   p.TranscriptID,
		CourseCode:     p.CourseCode,
		CourseName:     p.CourseName,
		Credits:        p.Credits,
		Grade:          p.Grade,
		CompletionDate: p.CompletionDate,
	})
	t.UpdatedAt = e.RecordedAt
	return nil
}

func (r *Registry) applyGraduationDateSet(e Entry, p GraduationDateSet) error {
	t, err := r.transcript(p.TranscriptID)
	if err != nil {
		return err
	}
	date := p.GraduationDate
	t.GraduationDate = &date
	t.UpdatedAt = e.RecordedAt
	return nil
}

func (r *Registry) applyTranscriptVerified(e Entry, p TranscriptVerified) error {
	t, err := r.transcript(p.TranscriptID)
	if err != nil {
		return err
	}
	if t.IsVerified {
		return ErrAlreadyVerified
	}
	verifier := p.Verifier
	at := e.RecordedAt
	t.IsVerified = true
	t.VerifiedBy = &verifier
	t.VerifiedAt = &at
	t.UpdatedAt = e.RecordedAt
	return nil
}

func (r *Registry) applyRoleGranted(_ Entry, p RoleChanged) error {
	if _, ok := roleBit(p.Role); !ok {
		return ErrInvalidRole
	}
	r.access.grant(p.Role, p.Account)
	return nil
}

func (r *Registry) applyRoleRevoked(_ Entry, p RoleChanged) error {
	if _, ok := roleBit(p.Role); !ok {
		return ErrInvalidRole
	}
	r.access.revoke(p.Role, p.Account)
	return nil
}
