package ledger

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/yigit/transcriptledger/internal/app/models"
)

// GetInstitution returns the institution with id
func (r *Registry) GetInstitution(id uint64) (models.Institution, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	inst, err := r.institution(id)
	if err != nil {
		return models.Institution{}, err
	}
	return *inst, nil
}

// ListInstitutions returns a page of institutions in id order and the total count
func (r *Registry) ListInstitutions(offset, limit int) ([]models.Institution, int) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	total := len(r.institutions)
	if offset < 0 {
		offset = 0
	}
	if offset >= total || limit <= 0 {
		return []models.Institution{}, total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	page := make([]models.Institution, end-offset)
	copy(page, r.institutions[offset:end])
	return page, total
}

// GetStudent returns the student registered under addr
func (r *Registry) GetStudent(addr common.Address) (models.Student, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.students[addr]
	if !ok {
		return models.Student{}, ErrStudentNotRegistered
	}
	return s, nil
}

// GetTranscript returns the transcript with id
func (r *Registry) GetTranscript(id uint64) (models.Transcript, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, err := r.transcript(id)
	if err != nil {
		return models.Transcript{}, err
	}
	return *t, nil
}

// GetStudentTranscripts returns the transcript ids owned by addr
func (r *Registry) GetStudentTranscripts(addr common.Address) []uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := r.studentTranscript[addr]
	out := make([]uint64, len(ids))
	copy(out, ids)
	return out
}

// GetTranscriptCourses returns the courses of a transcript. An unknown id
// yields an empty list.
func (r *Registry) GetTranscriptCourses(id uint64) []models.Course {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if id == 0 || id > uint64(len(r.courses)) {
		return []models.Course{}
	}
	out := make([]models.Course, len(r.courses[id-1]))
	copy(out, r.courses[id-1])
	return out
}

// CalculateGPA returns the credit-weighted GPA of a transcript times 100
func (r *Registry) CalculateGPA(id uint64) (uint64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, err := r.transcript(id); err != nil {
		return 0, err
	}
	return ComputeGPA(r.courses[id-1])
}

// GetTotalInstitutions returns the number of registered institutions
func (r *Registry) GetTotalInstitutions() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return uint64(len(r.institutions))
}

// GetTotalTranscripts returns the number of created transcripts
func (r *Registry) GetTotalTranscripts() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return uint64(len(r.transcripts))
}

// IsRegisteredStudent reports whether addr registered as a student
func (r *Registry) IsRegisteredStudent(addr common.Address) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.students[addr]
	return ok
}

// IsRegisteredInstitution reports whether addr controls an institution
func (r *Registry) IsRegisteredInstitution(addr common.Address) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.institutionByAddr[addr]
	return ok
}

// HasRole reports whether id holds role
func (r *Registry) HasRole(role models.Role, id common.Address) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.access.HasRole(role, id)
}

// RolesOf returns the roles held by id
func (r *Registry) RolesOf(id common.Address) []models.Role {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.access.Roles(id)
}

// Head returns the last committed journal entry
func (r *Registry) Head() Head {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.head
}
