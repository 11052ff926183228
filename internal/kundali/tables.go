// internal/kundali/tables.go
package kundali

import "kundali-workers/internal/models"

// Graha indices. DashaLord on a person vector uses this order, with Rahu
// and Ketu appended after the seven rashi lords.
const (
	GrahaSun = iota
	GrahaMoon
	GrahaMars
	GrahaMercury
	GrahaJupiter
	GrahaVenus
	GrahaSaturn
	GrahaRahu
	GrahaKetu
)

// relation values between two grahas.
type relation int

const (
	relEnemy relation = iota
	relNeutral
	relFriend
)

// Vashya groups of the twelve rashis.
type vashyaGroup int

const (
	vashyaChatushpada vashyaGroup = iota // quadruped
	vashyaManava                        // human
	vashyaJalachara                     // aquatic
	vashyaVanachara                     // wild
	vashyaKeeta                         // insect
)

// nakshatraGana maps nakshatra index (Ashwini=0 .. Revati=26) to gana class.
var nakshatraGana = [27]models.Gana{
	models.GanaDeva, models.GanaManushya, models.GanaRakshasa, // Ashwini, Bharani, Krittika
	models.GanaManushya, models.GanaDeva, models.GanaManushya, // Rohini, Mrigashira, Ardra
	models.GanaDeva, models.GanaDeva, models.GanaRakshasa, // Punarvasu, Pushya, Ashlesha
	models.GanaRakshasa, models.GanaManushya, models.GanaManushya, // Magha, P.Phalguni, U.Phalguni
	models.GanaDeva, models.GanaRakshasa, models.GanaDeva, // Hasta, Chitra, Swati
	models.GanaRakshasa, models.GanaDeva, models.GanaRakshasa, // Vishakha, Anuradha, Jyeshtha
	models.GanaRakshasa, models.GanaManushya, models.GanaManushya, // Mula, P.Ashadha, U.Ashadha
	models.GanaDeva, models.GanaRakshasa, models.GanaRakshasa, // Shravana, Dhanishta, Shatabhisha
	models.GanaManushya, models.GanaManushya, models.GanaDeva, // P.Bhadrapada, U.Bhadrapada, Revati
}

// nakshatraYoni maps nakshatra index to animal archetype.
var nakshatraYoni = [27]models.Yoni{
	models.YoniHorse, models.YoniElephant, models.YoniSheep,
	models.YoniSerpent, models.YoniSerpent, models.YoniDog,
	models.YoniCat, models.YoniSheep, models.YoniCat,
	models.YoniRat, models.YoniRat, models.YoniCow,
	models.YoniBuffalo, models.YoniTiger, models.YoniBuffalo,
	models.YoniTiger, models.YoniDeer, models.YoniDeer,
	models.YoniDog, models.YoniMonkey, models.YoniMongoose,
	models.YoniMonkey, models.YoniLion, models.YoniHorse,
	models.YoniLion, models.YoniCow, models.YoniElephant,
}

// nakshatraNadi maps nakshatra index to nadi class (the classical
// Adi/Madhya/Antya zigzag).
var nakshatraNadi = [27]models.Nadi{
	models.NadiAdi, models.NadiMadhya, models.NadiAntya,
	models.NadiAntya, models.NadiMadhya, models.NadiAdi,
	models.NadiAdi, models.NadiMadhya, models.NadiAntya,
	models.NadiAntya, models.NadiMadhya, models.NadiAdi,
	models.NadiAdi, models.NadiMadhya, models.NadiAntya,
	models.NadiAntya, models.NadiMadhya, models.NadiAdi,
	models.NadiAdi, models.NadiMadhya, models.NadiAntya,
	models.NadiAntya, models.NadiMadhya, models.NadiAdi,
	models.NadiAdi, models.NadiMadhya, models.NadiAntya,
}

// rashiVarna maps rashi index (Aries=0 .. Pisces=11) to varna tier
// (water signs Brahmin, fire Kshatriya, earth Vaishya, air Shudra).
var rashiVarna = [12]models.Varna{
	models.VarnaKshatriya, models.VarnaVaishya, models.VarnaShudra,
	models.VarnaBrahmin, models.VarnaKshatriya, models.VarnaVaishya,
	models.VarnaShudra, models.VarnaBrahmin, models.VarnaKshatriya,
	models.VarnaVaishya, models.VarnaShudra, models.VarnaBrahmin,
}

// rashiLord maps rashi index to its ruling graha.
var rashiLord = [12]int{
	GrahaMars, GrahaVenus, GrahaMercury, GrahaMoon,
	GrahaSun, GrahaMercury, GrahaVenus, GrahaMars,
	GrahaJupiter, GrahaSaturn, GrahaSaturn, GrahaJupiter,
}

// rashiVashya maps rashi index to its vashya group.
var rashiVashya = [12]vashyaGroup{
	vashyaChatushpada, vashyaChatushpada, vashyaManava, vashyaJalachara,
	vashyaVanachara, vashyaManava, vashyaManava, vashyaKeeta,
	vashyaChatushpada, vashyaJalachara, vashyaManava, vashyaJalachara,
}

// yoniMatrix is the symmetric 14x14 animal compatibility table. Self pairs
// score the maximum 4, sworn-enemy pairs (horse/buffalo, elephant/lion,
// sheep/monkey, serpent/mongoose, dog/deer, cat/rat, cow/tiger) score 0.
var yoniMatrix = [14][14]int{
	{4, 2, 2, 3, 2, 2, 2, 1, 0, 1, 3, 3, 2, 1}, // Horse
	{2, 4, 3, 3, 2, 2, 2, 2, 3, 1, 2, 3, 2, 0}, // Elephant
	{2, 3, 4, 2, 1, 2, 1, 3, 3, 1, 2, 0, 3, 1}, // Sheep
	{3, 3, 2, 4, 2, 1, 1, 1, 1, 2, 2, 2, 0, 2}, // Serpent
	{2, 2, 1, 2, 4, 2, 1, 2, 2, 1, 0, 2, 1, 1}, // Dog
	{2, 2, 2, 1, 2, 4, 0, 2, 2, 1, 3, 3, 2, 1}, // Cat
	{2, 2, 1, 1, 1, 0, 4, 2, 2, 2, 2, 2, 1, 2}, // Rat
	{1, 2, 3, 1, 2, 2, 2, 4, 3, 0, 3, 2, 2, 1}, // Cow
	{0, 3, 3, 1, 2, 2, 2, 3, 4, 1, 2, 2, 2, 1}, // Buffalo
	{1, 1, 1, 2, 1, 1, 2, 0, 1, 4, 1, 1, 2, 1}, // Tiger
	{3, 2, 2, 2, 0, 3, 2, 3, 2, 1, 4, 2, 2, 1}, // Deer
	{3, 3, 0, 2, 2, 3, 2, 2, 2, 1, 2, 4, 3, 2}, // Monkey
	{2, 2, 3, 0, 1, 2, 1, 2, 2, 2, 2, 3, 4, 2}, // Mongoose
	{1, 0, 1, 2, 1, 1, 2, 1, 1, 1, 1, 2, 2, 4}, // Lion
}

// ganaMatrix is the 3x3 temperament table (rows and columns ordered
// Deva, Manushya, Rakshasa).
var ganaMatrix = [3][3]int{
	{6, 5, 1},
	{5, 6, 0},
	{1, 0, 6},
}

// vashyaMatrix holds the dominance-group points, groom group as row and
// bride group as column (rows/cols ordered chatushpada, manava, jalachara,
// vanachara, keeta). Half points from the classical table are rounded up
// to keep sub-scores integral.
var vashyaMatrix = [5][5]int{
	{2, 1, 1, 0, 1},
	{1, 2, 1, 0, 1},
	{1, 1, 2, 1, 1},
	{0, 0, 1, 2, 0},
	{1, 1, 1, 0, 2},
}

// grahaRelation is the natural (naisargika) friendship table for the seven
// rashi lords, row graha's disposition toward the column graha.
var grahaRelation = [7][7]relation{
	{relFriend, relFriend, relFriend, relNeutral, relFriend, relEnemy, relEnemy},     // Sun
	{relFriend, relFriend, relNeutral, relFriend, relNeutral, relNeutral, relNeutral}, // Moon
	{relFriend, relFriend, relFriend, relEnemy, relFriend, relNeutral, relNeutral},   // Mars
	{relFriend, relEnemy, relNeutral, relFriend, relNeutral, relFriend, relNeutral},  // Mercury
	{relFriend, relFriend, relFriend, relEnemy, relFriend, relEnemy, relNeutral},     // Jupiter
	{relEnemy, relEnemy, relNeutral, relFriend, relNeutral, relFriend, relFriend},    // Venus
	{relEnemy, relEnemy, relEnemy, relFriend, relNeutral, relFriend, relFriend},      // Saturn
}

// dashaRelation extends the friendship table to all nine dasha lords.
// Rahu takes Saturn's relationships and Ketu takes Mars's, the usual
// shadow-planet simplification.
func dashaRelation(a, b int) relation {
	return grahaRelation[foldShadow(a)][foldShadow(b)]
}

func foldShadow(g int) int {
	switch g {
	case GrahaRahu:
		return GrahaSaturn
	case GrahaKetu:
		return GrahaMars
	default:
		return g
	}
}

// GanaOf returns the gana class of a nakshatra index.
func GanaOf(nakshatra int) models.Gana { return nakshatraGana[nakshatra] }

// YoniOf returns the animal archetype of a nakshatra index.
func YoniOf(nakshatra int) models.Yoni { return nakshatraYoni[nakshatra] }

// NadiOf returns the nadi class of a nakshatra index.
func NadiOf(nakshatra int) models.Nadi { return nakshatraNadi[nakshatra] }

// VarnaOf returns the varna tier of a rashi index.
func VarnaOf(rashi int) models.Varna { return rashiVarna[rashi] }

// LordOf returns the ruling graha of a rashi index.
func LordOf(rashi int) int { return rashiLord[rashi] }
