package inmemdb

import (
	"sync"

	"github.com/NAA-del/naa-portal/core/announcement"
	"github.com/NAA-del/naa-portal/core/committee"
	"github.com/NAA-del/naa-portal/core/cpd"
	"github.com/NAA-del/naa-portal/core/member"
	"github.com/NAA-del/naa-portal/core/notification"
	"github.com/NAA-del/naa-portal/core/resource"
)

type (
	memberTable struct {
		mutex    sync.RWMutex
		pkCount  int
		table    map[int]*member.Member
		profiles map[int]*member.StudentProfile
	}

	committeeTable struct {
		mutex         sync.RWMutex
		pkCount       int
		reportPK      int
		annPK         int
		table         map[int]*committee.Committee
		reports       map[int]*committee.Report
		announcements map[int]*committee.Announcement
	}

	resourceTable struct {
		mutex   sync.RWMutex
		pkCount int
		table   map[int]*resource.Resource
	}

	cpdTable struct {
		mutex   sync.RWMutex
		pkCount int
		table   map[int]*cpd.Record
	}

	announcementTable struct {
		mutex     sync.RWMutex
		pkCount   int
		studentPK int
		table     map[int]*announcement.Announcement
		student   map[int]*announcement.StudentAnnouncement
	}

	notificationTable struct {
		mutex sync.RWMutex
		table map[string]*notification.Event
	}
)

// DB is an in-memory store used in tests and local development.
type DB struct {
	member       *memberTable
	committee    *committeeTable
	resource     *resourceTable
	cpd          *cpdTable
	announcement *announcementTable
	notification *notificationTable
}

// Reset empties every table in place. Repositories keep working against the
// same DB; tests call this between cases.
func (db *DB) Reset() {
	db.member.mutex.Lock()
	db.member.pkCount = 0
	db.member.table = make(map[int]*member.Member)
	db.member.profiles = make(map[int]*member.StudentProfile)
	db.member.mutex.Unlock()

	db.committee.mutex.Lock()
	db.committee.pkCount = 0
	db.committee.reportPK = 0
	db.committee.annPK = 0
	db.committee.table = make(map[int]*committee.Committee)
	db.committee.reports = make(map[int]*committee.Report)
	db.committee.announcements = make(map[int]*committee.Announcement)
	db.committee.mutex.Unlock()

	db.resource.mutex.Lock()
	db.resource.pkCount = 0
	db.resource.table = make(map[int]*resource.Resource)
	db.resource.mutex.Unlock()

	db.cpd.mutex.Lock()
	db.cpd.pkCount = 0
	db.cpd.table = make(map[int]*cpd.Record)
	db.cpd.mutex.Unlock()

	db.announcement.mutex.Lock()
	db.announcement.pkCount = 0
	db.announcement.studentPK = 0
	db.announcement.table = make(map[int]*announcement.Announcement)
	db.announcement.student = make(map[int]*announcement.StudentAnnouncement)
	db.announcement.mutex.Unlock()

	db.notification.mutex.Lock()
	db.notification.table = make(map[string]*notification.Event)
	db.notification.mutex.Unlock()
}

func NewDB() *DB {
	return &DB{
		member: &memberTable{
			table:    make(map[int]*member.Member),
			profiles: make(map[int]*member.StudentProfile),
		},
		committee: &committeeTable{
			table:         make(map[int]*committee.Committee),
			reports:       make(map[int]*committee.Report),
			announcements: make(map[int]*committee.Announcement),
		},
		resource:     &resourceTable{table: make(map[int]*resource.Resource)},
		cpd:          &cpdTable{table: make(map[int]*cpd.Record)},
		announcement: &announcementTable{
			table:   make(map[int]*announcement.Announcement),
			student: make(map[int]*announcement.StudentAnnouncement),
		},
		notification: &notificationTable{table: make(map[string]*notification.Event)},
	}
}
