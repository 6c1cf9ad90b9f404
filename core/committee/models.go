package committee

import (
	"time"

	"github.com/NAA-del/naa-portal/core"
	"github.com/NAA-del/naa-portal/core/member"
)

// Committee is a named working group. The director, if set, need not appear
// in the member set but holds member-equivalent (and management) access.
type Committee struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	DirectorID  *int      `json:"director_id"`
	MemberIDs   []int     `json:"member_ids"`
	CreatedAt   time.Time `json:"created_at"` // UTC
	UpdatedAt   time.Time `json:"updated_at"` // UTC
}

var _ member.CommitteeScoped = Committee{}

func (c Committee) IsDirector(memberID int) bool {
	return c.DirectorID != nil && *c.DirectorID == memberID
}

func (c Committee) IsCommitteeMember(memberID int) bool {
	if c.IsDirector(memberID) {
		return true
	}
	for _, id := range c.MemberIDs {
		if id == memberID {
			return true
		}
	}
	return false
}

// Committees carry no access level of their own; visibility is purely
// role/relationship based.
func (c Committee) RequiredLevel() (member.AccessLevel, bool) { return "", false }
func (c Committee) RequiresVerified() bool                    { return false }

// Report is a document uploaded by a committee's director.
type Report struct {
	ID          int       `json:"id"`
	CommitteeID int       `json:"committee_id"`
	Title       string    `json:"title"`
	FileName    string    `json:"file_name"`
	UploadedBy  int       `json:"uploaded_by"`
	UploadedAt  time.Time `json:"uploaded_at"` // UTC
}

// Announcement is a message posted to a committee's members.
type Announcement struct {
	ID          int       `json:"id"`
	CommitteeID int       `json:"committee_id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	PostedBy    int       `json:"posted_by"`
	PostedAt    time.Time `json:"posted_at"` // UTC
}

type NewCommittee struct {
	Name        string `json:"name" validate:"required,min=3,max=100"`
	Description string `json:"description" validate:"max=2000"`
	DirectorID  *int   `json:"director_id"`
}

func (nc *NewCommittee) Validate() error {
	nc.Name = core.CleanString(nc.Name)
	nc.Description = core.CleanString(nc.Description)
	return core.Validate.Struct(nc)
}

type UpdateCommittee struct {
	Name        string `json:"name" validate:"omitempty,min=3,max=100"`
	Description string `json:"description" validate:"max=2000"`
	DirectorID  *int   `json:"director_id"`
}

func (uc *UpdateCommittee) Validate(orig Committee) error {
	if name := core.CleanString(uc.Name); name != "" {
		uc.Name = name
	} else {
		uc.Name = orig.Name
	}
	if desc := core.CleanString(uc.Description); desc != "" {
		uc.Description = desc
	} else {
		uc.Description = orig.Description
	}
	return core.Validate.Struct(uc)
}

type NewReport struct {
	Title    string `json:"title" validate:"required,min=3,max=200"`
	FileName string `json:"file_name" validate:"required"`
	File     []byte `json:"-"`
}

func (nr *NewReport) Validate() error {
	nr.Title = core.CleanString(nr.Title)
	return core.Validate.Struct(nr)
}

type NewAnnouncement struct {
	Title   string `json:"title" validate:"required,min=3,max=200"`
	Content string `json:"content" validate:"required"`
}

func (na *NewAnnouncement) Validate() error {
	na.Title = core.CleanString(na.Title)
	na.Content = core.CleanString(na.Content)
	return core.Validate.Struct(na)
}
