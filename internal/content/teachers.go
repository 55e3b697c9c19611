package content

import (
	"strings"

	"khamboran/internal/models"
)

// teacherCredentials is the static teacher table, keyed lookup by
// lowercased email. Hashes are bcrypt for new rows; the seeded rows carry
// legacy SHA-256 hex digests from the first deployment and both forms are
// accepted (see security.VerifyPasscode). Dashboard access gating only,
// not a hardened boundary.
var teacherCredentials = []models.TeacherCredential{
	{
		Email:        "kru.somsri@school.ac.th",
		PasscodeHash: "db0b57d665000c26a1c34338242dc37768fe207bde68b42fa087d8663818d8e3",
		DisplayName:  "ครูสมศรี",
		Department:   "กลุ่มสาระภาษาไทย",
		Classes:      []string{"ม.1/1", "ม.1/2"},
	},
	{
		Email:        "kru.wichai@school.ac.th",
		PasscodeHash: "bd83d64f64f9ea34ca1708693932b9e7c84152e219bfe9bee9d4944fb7ed614b",
		DisplayName:  "ครูวิชัย",
		Department:   "กลุ่มสาระภาษาไทย",
		Classes:      []string{"ม.1/3"},
	},
}

// FindTeacher looks up a teacher credential by email, case-insensitively.
func FindTeacher(email string) (models.TeacherCredential, bool) {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, t := range teacherCredentials {
		if strings.ToLower(t.Email) == email {
			return t, true
		}
	}
	return models.TeacherCredential{}, false
}

// Teachers returns a copy of the credential table.
func Teachers() []models.TeacherCredential {
	out := make([]models.TeacherCredential, len(teacherCredentials))
	copy(out, teacherCredentials)
	return out
}
