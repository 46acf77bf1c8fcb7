package profile

// Field names shared by the extractors, the inference instruction and the reconcile steps.
const (
	FieldName                   = "name"
	FieldEmail                  = "email"
	FieldPhone                  = "phone"
	FieldICNumber               = "ic_number"
	FieldDateOfBirth            = "date_of_birth"
	FieldAge                    = "age"
	FieldRace                   = "race"
	FieldLocation               = "location"
	FieldTShirtSize             = "tshirt_size"
	FieldTransportation         = "transportation"
	FieldSpokenLanguages        = "spoken_languages"
	FieldHeight                 = "height"
	FieldTyphoid                = "typhoid"
	FieldEmergencyContactName   = "emergency_contact_name"
	FieldEmergencyContactNumber = "emergency_contact_number"

	FieldSkills         = "skills"
	FieldExperience     = "experience"
	FieldEducation      = "education"
	FieldExperienceTags = "experience_tags"
)

// ScalarFields lists every single-valued field in output order.
var ScalarFields = []string{
	FieldName,
	FieldEmail,
	FieldPhone,
	FieldICNumber,
	FieldDateOfBirth,
	FieldAge,
	FieldRace,
	FieldLocation,
	FieldTShirtSize,
	FieldTransportation,
	FieldSpokenLanguages,
	FieldHeight,
	FieldTyphoid,
	FieldEmergencyContactName,
	FieldEmergencyContactNumber,
}

// ListFields lists every multi-valued field in output order.
var ListFields = []string{
	FieldSkills,
	FieldExperience,
	FieldEducation,
	FieldExperienceTags,
}

// Draft is the canonical candidate profile produced by either extraction strategy.
type Draft struct {
	Name                   string `json:"name" yaml:"name"`
	Email                  string `json:"email" yaml:"email"`
	Phone                  string `json:"phone" yaml:"phone"`
	ICNumber               string `json:"ic_number" yaml:"ic_number"`
	DateOfBirth            string `json:"date_of_birth" yaml:"date_of_birth"`
	Age                    string `json:"age" yaml:"age"`
	Race                   string `json:"race" yaml:"race"`
	Location               string `json:"location" yaml:"location"`
	TShirtSize             string `json:"tshirt_size" yaml:"tshirt_size"`
	Transportation         string `json:"transportation" yaml:"transportation"`
	SpokenLanguages        string `json:"spoken_languages" yaml:"spoken_languages"`
	Height                 string `json:"height" yaml:"height"`
	Typhoid                string `json:"typhoid" yaml:"typhoid"`
	EmergencyContactName   string `json:"emergency_contact_name" yaml:"emergency_contact_name"`
	EmergencyContactNumber string `json:"emergency_contact_number" yaml:"emergency_contact_number"`

	Skills         []string `json:"skills" yaml:"skills"`
	Experience     []string `json:"experience" yaml:"experience"`
	Education      []string `json:"education" yaml:"education"`
	ExperienceTags []string `json:"experience_tags" yaml:"experience_tags"`

	RawText string `json:"raw_text" yaml:"raw_text"`
}

// New returns an empty draft with every collection initialised.
func New() *Draft {
	return &Draft{
		Skills:         []string{},
		Experience:     []string{},
		Education:      []string{},
		ExperienceTags: []string{},
	}
}

// Scalar returns a pointer to the named scalar field, or nil for unknown names.
func (d *Draft) Scalar(name string) *string {
	switch name {
	case FieldName:
		return &d.Name
	case FieldEmail:
		return &d.Email
	case FieldPhone:
		return &d.Phone
	case FieldICNumber:
		return &d.ICNumber
	case FieldDateOfBirth:
		return &d.DateOfBirth
	case FieldAge:
		return &d.Age
	case FieldRace:
		return &d.Race
	case FieldLocation:
		return &d.Location
	case FieldTShirtSize:
		return &d.TShirtSize
	case FieldTransportation:
		return &d.Transportation
	case FieldSpokenLanguages:
		return &d.SpokenLanguages
	case FieldHeight:
		return &d.Height
	case FieldTyphoid:
		return &d.Typhoid
	case FieldEmergencyContactName:
		return &d.EmergencyContactName
	case FieldEmergencyContactNumber:
		return &d.EmergencyContactNumber
	default:
		return nil
	}
}

// List returns a pointer to the named collection field, or nil for unknown names.
func (d *Draft) List(name string) *[]string {
	switch name {
	case FieldSkills:
		return &d.Skills
	case FieldExperience:
		return &d.Experience
	case FieldEducation:
		return &d.Education
	case FieldExperienceTags:
		return &d.ExperienceTags
	default:
		return nil
	}
}

// Canonicalize removes duplicates from every collection, preserving first-seen order,
// and replaces nil collections with empty ones.
func (d *Draft) Canonicalize() {
	for _, name := range ListFields {
		list := d.List(name)
		*list = Unique(*list)
	}
}

// Unique returns the non-empty values of in, deduplicated in first-seen order.
// The result is never nil.
func Unique(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, v := range in {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
