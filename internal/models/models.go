package models

// Toilet is a tracked sanitation facility. Records come from the remote
// snapshot or from local admin edits; the merged view keys on ID.
type Toilet struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	Area             string     `json:"area"`
	City             string     `json:"city,omitempty"`
	Status           string     `json:"status"`
	TrackerInstalled bool       `json:"trackerInstalled"`
	LastCleaned      string     `json:"lastCleaned,omitempty"`
	GPSCoords        [2]float64 `json:"gpsCoords"`
	Description      string     `json:"description,omitempty"`
	Provider         string     `json:"provider,omitempty"`
}

// Cleaning is an immutable event recording one cleaning session. Created
// once at submission; only ever appended to history afterwards.
type Cleaning struct {
	ID                string      `json:"id,omitempty"`
	ToiletID          string      `json:"toiletId"`
	ProviderID        string      `json:"providerId"`
	Timestamp         string      `json:"timestamp"`
	Status            string      `json:"status,omitempty"`
	Flagged           bool        `json:"flagged,omitempty"`
	AIScore           float64     `json:"aiScore,omitempty"`
	GPS               *[2]float64 `json:"gps,omitempty"`
	Notes             string      `json:"notes,omitempty"`
	BeforePhotoBase64 string      `json:"beforePhotoBase64,omitempty"`
	AfterPhotoBase64  string      `json:"afterPhotoBase64,omitempty"`
}

// User is a provider or admin. Email and password exist only for mock
// credential matching against the snapshot user list.
type User struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Role            string   `json:"role"`
	City            string   `json:"city,omitempty"`
	ProviderCode    string   `json:"providerCode,omitempty"`
	AssignedToilets []string `json:"assignedToilets,omitempty"`
	Rating          float64  `json:"rating,omitempty"`
	TotalCleaned    int      `json:"totalCleaned,omitempty"`
	Email           string   `json:"email,omitempty"`
	Password        string   `json:"password,omitempty"`
}

// Registration is a self-submitted provider sign-up awaiting admin review.
type Registration struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Password  string `json:"password,omitempty"`
	City      string `json:"city"`
	CreatedAt string `json:"createdAt"`
}

// Assignments maps a provider id to the ordered set of toilet ids assigned
// to them. Owned independently of Toilet.Provider; reconciled on save.
type Assignments map[string][]string

const (
	StatusPending    = "Pending"
	StatusInProgress = "In Progress"
	StatusCompleted  = "Completed"
	StatusFlagged    = "Flagged"
)

const (
	RoleProvider = "provider"
	RoleAdmin    = "admin"
)

const CleaningStatusCompleted = "completed"
