// internal/models/person.go
package models

import "fmt"

// Gender is used to orient the direction-sensitive kootas (Varna, Vashya).
type Gender string

const (
	GenderFemale      Gender = "female"
	GenderMale        Gender = "male"
	GenderUnspecified Gender = ""
)

// Gana is the temperament class of a nakshatra.
type Gana int

const (
	GanaDeva Gana = iota
	GanaManushya
	GanaRakshasa
)

// Nadi is the constitution class of a nakshatra.
type Nadi int

const (
	NadiAdi Nadi = iota
	NadiMadhya
	NadiAntya
)

// Yoni is one of the 14 animal archetypes.
type Yoni int

const (
	YoniHorse Yoni = iota
	YoniElephant
	YoniSheep
	YoniSerpent
	YoniDog
	YoniCat
	YoniRat
	YoniCow
	YoniBuffalo
	YoniTiger
	YoniDeer
	YoniMonkey
	YoniMongoose
	YoniLion
)

// Varna is the four-tier class of a rashi. Lower value means higher tier.
type Varna int

const (
	VarnaBrahmin Varna = iota
	VarnaKshatriya
	VarnaVaishya
	VarnaShudra
)

// PersonVector holds one person's astrologically derived attributes.
// It is produced once by the upstream chart-calculation step and is
// read-only everywhere in the matching engine.
type PersonVector struct {
	PersonID  string `json:"personId"`
	UserID    string `json:"userId"`
	Gender    Gender `json:"gender"`
	IsPrimary bool   `json:"isPrimary"`
	Rashi     int    `json:"moonRashi"`     // 0-11
	Nakshatra int    `json:"moonNakshatra"` // 0-26
	Pada      int    `json:"pada"`          // 1-4
	Gana      Gana   `json:"gana"`
	Yoni      Yoni   `json:"yoni"`
	Nadi      Nadi   `json:"nadi"`
	Varna     Varna  `json:"varna"`
	MarsHouse int    `json:"marsHouse"` // 1-12
	DashaLord int    `json:"dashaLord"` // 0-8, see kundali graha constants
}

// Validate checks every field against its legal range. A vector that fails
// here must never reach the scorer: a silent zero from a bad index would be
// indistinguishable from a legitimate dosha-driven zero.
func (p *PersonVector) Validate() error {
	if p.PersonID == "" {
		return fmt.Errorf("person vector missing person id")
	}
	if p.Rashi < 0 || p.Rashi > 11 {
		return fmt.Errorf("person %s: moon rashi %d out of range [0,11]", p.PersonID, p.Rashi)
	}
	if p.Nakshatra < 0 || p.Nakshatra > 26 {
		return fmt.Errorf("person %s: moon nakshatra %d out of range [0,26]", p.PersonID, p.Nakshatra)
	}
	if p.Pada < 1 || p.Pada > 4 {
		return fmt.Errorf("person %s: pada %d out of range [1,4]", p.PersonID, p.Pada)
	}
	if p.Gana < GanaDeva || p.Gana > GanaRakshasa {
		return fmt.Errorf("person %s: gana %d out of range [0,2]", p.PersonID, p.Gana)
	}
	if p.Yoni < YoniHorse || p.Yoni > YoniLion {
		return fmt.Errorf("person %s: yoni %d out of range [0,13]", p.PersonID, p.Yoni)
	}
	if p.Nadi < NadiAdi || p.Nadi > NadiAntya {
		return fmt.Errorf("person %s: nadi %d out of range [0,2]", p.PersonID, p.Nadi)
	}
	if p.Varna < VarnaBrahmin || p.Varna > VarnaShudra {
		return fmt.Errorf("person %s: varna %d out of range [0,3]", p.PersonID, p.Varna)
	}
	if p.MarsHouse < 1 || p.MarsHouse > 12 {
		return fmt.Errorf("person %s: mars house %d out of range [1,12]", p.PersonID, p.MarsHouse)
	}
	if p.DashaLord < 0 || p.DashaLord > 8 {
		return fmt.Errorf("person %s: dasha lord %d out of range [0,8]", p.PersonID, p.DashaLord)
	}
	return nil
}
