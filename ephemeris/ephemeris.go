// Package ephemeris implements the solar-ephemeris scalar utilities named
// in spec §2's component table but never detailed in §4: Julian date
// conversion, Carrington rotation number, and the heliographic disk
// parameters B0/L0/P. These are low-precision (VSOP-free) formulas, the
// accuracy amateur solar imaging tools settle for rather than a full
// ephemeris package.
package ephemeris

import (
	"math"
	"time"

	"github.com/melix/astro4j-sub008/core"
)

const (
	solarEquatorInclination = 7.25 // degrees, I in Meeus ch.29
	j2000                   = 2451545.0
)

// JulianDate converts a civil time (any location; converted to UTC
// internally) to its Julian Date.
func JulianDate(t time.Time) float64 {
	t = t.UTC()
	y, m, d := t.Date()
	year, month := y, int(m)
	dayFrac := float64(d) + (float64(t.Hour())*3600+float64(t.Minute())*60+float64(t.Second()))/86400

	if month <= 2 {
		year--
		month += 12
	}
	a := year / 100
	b := 2 - a + a/4
	return math.Floor(365.25*float64(year+4716)) + math.Floor(30.6001*float64(month+1)) + dayFrac + float64(b) - 1524.5
}

// CarringtonRotation returns the (fractional) Carrington rotation number
// at Julian Date jd. Rotation 1 began at JD 2398140.227; the mean synodic
// rotation period is 27.2753 days.
func CarringtonRotation(jd float64) float64 {
	return 1 + (jd-2398140.227)/27.2753
}

// Disk holds the heliographic disk parameters for an instant in time.
type Disk struct {
	B0 core.Angle // heliographic latitude of the sub-Earth point
	L0 core.Angle // heliographic (Carrington) longitude of the sub-Earth point
	P  core.Angle // position angle of the solar rotation axis
}

// DiskAt computes B0/L0/P at Julian Date jd.
func DiskAt(jd float64) Disk {
	tcent := (jd - j2000) / 36525.0

	meanLong := normalizeDeg(280.46645 + 36000.76983*tcent + 0.0003032*tcent*tcent)
	meanAnomaly := normalizeDeg(357.52910 + 35999.05030*tcent - 0.0001559*tcent*tcent - 0.00000048*tcent*tcent*tcent)
	center := (1.914600-0.004817*tcent-0.000014*tcent*tcent)*sinDeg(meanAnomaly) +
		(0.019993-0.000101*tcent)*sinDeg(2*meanAnomaly) +
		0.000290*sinDeg(3*meanAnomaly)
	trueLong := meanLong + center

	omega := 125.04 - 1934.136*tcent
	apparentLong := trueLong - 0.00569 - 0.00478*sinDeg(omega)

	obliquity := 23.4393 - 0.0130*tcent
	ascendingNode := 73.6667 + 1.3958333*(jd-2396758.0)/36525.0

	lambda := deg2rad(apparentLong)
	eps := deg2rad(obliquity)
	incl := deg2rad(solarEquatorInclination)
	k := deg2rad(ascendingNode)

	lk := lambda - k

	b0 := math.Asin(math.Sin(lk) * math.Sin(incl))

	eta := math.Atan2(-math.Sin(lk)*math.Cos(incl), -math.Cos(lk))
	theta := normalizeDeg((jd - 2398220.0) * 360.0 / 25.38)
	l0 := normalizeDeg(rad2deg(eta) - theta)

	x := math.Atan(-math.Cos(lambda) * math.Tan(eps))
	z := math.Atan(-math.Cos(lk) * math.Tan(incl))
	p := x + z

	return Disk{
		B0: core.AngleFromRadians(b0),
		L0: core.AngleFromDegrees(l0),
		P:  core.AngleFromRadians(p),
	}
}

func normalizeDeg(deg float64) float64 {
	d := math.Mod(deg, 360)
	if d < 0 {
		d += 360
	}
	return d
}

func sinDeg(deg float64) float64 { return math.Sin(deg2rad(deg)) }
func deg2rad(deg float64) float64 { return deg * math.Pi / 180 }
func rad2deg(rad float64) float64 { return rad * 180 / math.Pi }
