package matching

import (
	"time"
)

// Gender is the profile gender as stored in the users table.
type Gender string

const (
	GenderMan     Gender = "man"
	GenderWoman   Gender = "woman"
	GenderTSMan   Gender = "ts_man"
	GenderTSWoman Gender = "ts_woman"
	GenderCouple  Gender = "couple"
)

// Genders lists every recognized value; preference parsing rejects the rest.
var Genders = []Gender{GenderMan, GenderWoman, GenderTSMan, GenderTSWoman, GenderCouple}

type BodyType string

const (
	BodyTiny     BodyType = "tiny"
	BodySlim     BodyType = "slim"
	BodyAverage  BodyType = "average"
	BodyMuscular BodyType = "muscular"
	BodyCurvy    BodyType = "curvy"
	BodyThick    BodyType = "thick"
	BodyBBW      BodyType = "bbw"
)

var BodyTypes = []BodyType{BodyTiny, BodySlim, BodyAverage, BodyMuscular, BodyCurvy, BodyThick, BodyBBW}

type Ethnicity string

const (
	EthnicityWhite  Ethnicity = "white"
	EthnicityAsian  Ethnicity = "asian"
	EthnicityLatino Ethnicity = "latino"
	EthnicityIndian Ethnicity = "indian"
	EthnicityBlack  Ethnicity = "black"
	EthnicityOther  Ethnicity = "other"
)

var Ethnicities = []Ethnicity{EthnicityWhite, EthnicityAsian, EthnicityLatino, EthnicityIndian, EthnicityBlack, EthnicityOther}

type HairColor string

const (
	HairLight  HairColor = "light"
	HairMedium HairColor = "medium"
	HairDark   HairColor = "dark"
	HairRed    HairColor = "red"
	HairGray   HairColor = "gray"
	HairOther  HairColor = "other"
)

var HairColors = []HairColor{HairLight, HairMedium, HairDark, HairRed, HairGray, HairOther}

type HairLength string

const (
	HairBald  HairLength = "bald"
	HairShort HairLength = "short"
	HairMid   HairLength = "mid"
	HairLong  HairLength = "long"
)

var HairLengths = []HairLength{HairBald, HairShort, HairMid, HairLong}

// HealthCondition is a disclosed condition a partner may opt out of.
type HealthCondition string

const (
	ConditionHIV       HealthCondition = "hiv"
	ConditionHerpes    HealthCondition = "herpes"
	ConditionWarts     HealthCondition = "warts"
	ConditionHepatitis HealthCondition = "hepatitis"
	ConditionOtherSTI  HealthCondition = "other_sti"
)

var HealthConditions = []HealthCondition{ConditionHIV, ConditionHerpes, ConditionWarts, ConditionHepatitis, ConditionOtherSTI}

// SexualAct is a tracked want-flag; either side wanting it makes it
// relevant to the sexual sub-score.
type SexualAct string

const (
	ActSafeSex       SexualAct = "safe_sex"
	ActBareback      SexualAct = "bareback"
	ActOralGive      SexualAct = "oral_give"
	ActOralReceive   SexualAct = "oral_receive"
	ActAnalTop       SexualAct = "anal_top"
	ActAnalBottom    SexualAct = "anal_bottom"
	ActFilming       SexualAct = "filming"
	ActVoyeur        SexualAct = "voyeur"
	ActExhibitionist SexualAct = "exhibitionist"
	ActRoleplay      SexualAct = "roleplay"
	ActSpanking      SexualAct = "spanking"
	ActDom           SexualAct = "dom"
	ActSub           SexualAct = "sub"
	ActStrapon       SexualAct = "strapon"
	ActCuckold       SexualAct = "cuckold"
	ActFurry         SexualAct = "furry"
)

var SexualActs = []SexualAct{
	ActSafeSex, ActBareback, ActOralGive, ActOralReceive,
	ActAnalTop, ActAnalBottom, ActFilming, ActVoyeur, ActExhibitionist,
	ActRoleplay, ActSpanking, ActDom, ActSub, ActStrapon, ActCuckold, ActFurry,
}

// KinkActs is the higher-intensity subset that earns the separate
// kink sub-bonus when mutual.
var KinkActs = []SexualAct{ActRoleplay, ActSpanking, ActDom, ActSub, ActStrapon, ActCuckold, ActFurry}

// LifestyleFlags describes behaviors a user engages in; the same struct
// on the reject side means "no partners who do this".
type LifestyleFlags struct {
	Smokes          bool `json:"smokes"`
	HeavyDrinker    bool `json:"heavy_drinker"`
	Marijuana       bool `json:"marijuana"`
	OtherDrugs      bool `json:"other_drugs"`
	Poly            bool `json:"poly"`
	MarriedDiscreet bool `json:"married_discreet"`
}

// Profile is a read-only snapshot of a user as the engine sees it.
// The profile service owns the underlying rows; we never write them.
type Profile struct {
	ID          int64     `json:"id" db:"id"`
	Username    string    `json:"username" db:"username"`
	DisplayName string    `json:"display_name" db:"display_name"`
	BirthDate   time.Time `json:"birth_date" db:"birth_date"`
	Age         int       `json:"age"`
	Gender      Gender    `json:"gender" db:"gender"`

	// Location. Coordinates may be absent; such profiles are skipped by
	// distance-bounded retrieval but still score a neutral location term.
	Latitude       *float64 `json:"latitude,omitempty" db:"latitude"`
	Longitude      *float64 `json:"longitude,omitempty" db:"longitude"`
	CurrentVenueID *int64   `json:"current_venue_id,omitempty" db:"current_venue_id"`

	// Declared seeking preferences.
	WantGenders   map[Gender]bool `json:"want_genders"`
	WantAgeFrom   int             `json:"want_age_from" db:"want_age_from"`
	WantAgeTo     int             `json:"want_age_to" db:"want_age_to"`
	MaxDistanceKm float64         `json:"max_distance_km" db:"max_distance_km"`

	// Physical attributes.
	Body       BodyType   `json:"body" db:"body"`
	Ethnicity  Ethnicity  `json:"ethnicity" db:"ethnicity"`
	HairColor  HairColor  `json:"hair_color" db:"hair_color"`
	HairLength HairLength `json:"hair_length" db:"hair_length"`
	HeightCm   *int       `json:"height_cm,omitempty" db:"height_cm"`

	// Self-rated ordinals used by the personality sub-score.
	OverallLooks       string `json:"overall_looks" db:"overall_looks"`
	Intelligence       string `json:"intelligence" db:"intelligence"`
	BedroomPersonality string `json:"bedroom_personality" db:"bedroom_personality"`

	// Physical preference strengths, 1-10 per wanted value. A missing key
	// means no stated preference for that value.
	WantBody       map[BodyType]int   `json:"want_body"`
	WantEthnicity  map[Ethnicity]int  `json:"want_ethnicity"`
	WantHairColor  map[HairColor]int  `json:"want_hair_color"`
	WantHairLength map[HairLength]int `json:"want_hair_length"`

	// Health disclosure and opt-outs, both keyed per condition.
	HaveCondition   map[HealthCondition]bool `json:"have_condition"`
	RejectCondition map[HealthCondition]bool `json:"reject_condition"`

	Lifestyle       LifestyleFlags `json:"lifestyle"`
	RejectLifestyle LifestyleFlags `json:"reject_lifestyle"`

	WantActs map[SexualAct]bool `json:"want_acts"`

	// Completeness fields feeding the activity sub-score.
	Bio        string `json:"bio" db:"bio"`
	PrivateBio string `json:"private_bio" db:"private_bio"`
	AvatarURL  string `json:"avatar_url" db:"avatar_url"`

	Active    bool      `json:"active" db:"active"`
	LastSeen  time.Time `json:"last_seen" db:"last_seen"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// HasCoordinates reports whether the profile carries a usable location.
func (p *Profile) HasCoordinates() bool {
	return p != nil && p.Latitude != nil && p.Longitude != nil
}

// Sub-score category names as they appear in CandidateResult.SubScores
// and in the weight set.
const (
	CategoryPhysical    = "physical"
	CategoryPersonality = "personality"
	CategorySexual      = "sexual"
	CategoryLifestyle   = "lifestyle"
	CategoryLocation    = "location"
	CategoryActivity    = "activity"
)

// CandidateResult is one scored candidate in a match response. Ephemeral:
// built per scoring run and discarded after the response unless cached.
type CandidateResult struct {
	CandidateID int64              `json:"candidate_id"`
	Username    string             `json:"username"`
	DisplayName string             `json:"display_name"`
	DistanceKm  float64            `json:"distance_km"`
	Score       float64            `json:"score"`
	SubScores   map[string]float64 `json:"sub_scores"`
	Boost       float64            `json:"boost,omitempty"`
}

// FilterSet is the caller-supplied filter for a match request. The zero
// value means "seeker defaults, cached result acceptable".
type FilterSet struct {
	OnlineOnly    bool    `json:"online_only"`
	NewUsersOnly  bool    `json:"new_users_only"`
	MaxDistanceKm float64 `json:"max_distance"`
	MinAge        int     `json:"min_age"`
	MaxAge        int     `json:"max_age"`
	ApplyMinScore bool    `json:"apply_min_score"`
	ForceRefresh  bool    `json:"force_refresh"`
}

// Interaction is one row from the interaction ledger between two users.
type Interaction struct {
	UserID       int64     `json:"user_id" db:"user_id"`
	TargetUserID int64     `json:"target_user_id" db:"target_user_id"`
	Action       string    `json:"action" db:"action"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
