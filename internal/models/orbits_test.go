package models

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/trajprop/internal/dynamo"
	"gonum.org/v1/gonum/floats/scalar"
)

func TestCircularOrbit(t *testing.T) {
	s := CircularOrbit(MuEarth, 6778)

	if s.Pos.X != 6778 || s.Pos.Y != 0 || s.Pos.Z != 0 {
		t.Errorf("unexpected position %v", s.Pos)
	}
	if !scalar.EqualWithinAbs(s.Vel.Y, 7.6688, 5e-4) {
		t.Errorf("expected circular speed ~7.6688 km/s, got %.6f", s.Vel.Y)
	}
	if s.Time != 0 {
		t.Errorf("expected t=0, got %v", s.Time)
	}
}

func TestEllipticalAtPeriapsis(t *testing.T) {
	a, e := 26600.0, 0.7
	s := EllipticalAtPeriapsis(MuEarth, a, e)

	if !scalar.EqualWithinRel(s.Radius(), a*(1-e), 1e-14) {
		t.Errorf("periapsis radius = %v, want %v", s.Radius(), a*(1-e))
	}

	// vis-viva: ε = -μ/2a
	energy := 0.5*s.Speed()*s.Speed() - MuEarth/s.Radius()
	if !scalar.EqualWithinRel(energy, -MuEarth/(2*a), 1e-12) {
		t.Errorf("specific energy = %v, want %v", energy, -MuEarth/(2*a))
	}
}

func TestOrbitalPeriod(t *testing.T) {
	period := OrbitalPeriod(MuEarth, 6778)
	if math.Abs(period-5553.6) > 1 {
		t.Errorf("LEO period = %.1f s, expected ~5553.6 s", period)
	}

	year := OrbitalPeriod(MuSun, OrbitEarth) / 86400
	if math.Abs(year-365.25) > 0.1 {
		t.Errorf("Earth year = %.3f days", year)
	}
}

func TestBrachistochroneAccel(t *testing.T) {
	// EP01: 550,630,800 km in 72 h
	accel := BrachistochroneAccel(550_630_800, 72*3600)
	if math.Abs(accel-0.03278) > 1e-4 {
		t.Errorf("accel = %.5f km/s², expected ~0.03278", accel)
	}
}

func TestLookupBody(t *testing.T) {
	b, err := LookupBody("Earth")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if b.Mu != MuEarth {
		t.Errorf("earth mu = %v", b.Mu)
	}

	if _, err := LookupBody("vulcan"); !errors.Is(err, dynamo.ErrUnknownBody) {
		t.Errorf("expected ErrUnknownBody, got %v", err)
	}

	if len(ListBodies()) != 9 {
		t.Errorf("expected 9 bodies, got %d", len(ListBodies()))
	}
}

func TestTransferDeparture(t *testing.T) {
	s := TransferDeparture(MuSun, OrbitJupiter, OrbitSaturn, EP02DepartureSpeed)

	if !scalar.EqualWithinRel(s.Speed(), EP02DepartureSpeed, 1e-12) {
		t.Errorf("departure speed = %v, want %v", s.Speed(), EP02DepartureSpeed)
	}
	if s.Vel.X <= 0 {
		t.Errorf("expected an outward radial component, got %v", s.Vel.X)
	}

	// slower than the transfer ellipse: tangential only
	slow := TransferDeparture(MuSun, OrbitJupiter, OrbitSaturn, 1)
	if slow.Vel.X != 0 {
		t.Errorf("expected no radial component, got %v", slow.Vel.X)
	}
	if slow.Vel.Y <= CircularSpeed(MuSun, OrbitJupiter) {
		t.Errorf("transfer periapsis speed %v should exceed circular speed", slow.Vel.Y)
	}
}

func TestEpisodeDepartures(t *testing.T) {
	ep01, thrust := EP01Departure()
	if ep01.Radius() != OrbitMars {
		t.Errorf("EP01 starts at %v, want Mars orbit", ep01.Radius())
	}
	if flip, ok := thrust.Event(); !ok || flip != EP01Duration/2 {
		t.Errorf("EP01 flip = %v (%v), want %v", flip, ok, EP01Duration/2)
	}

	ep02 := EP02Departure()
	if ep02.Radius() != OrbitJupiter {
		t.Errorf("EP02 starts at %v, want Jupiter orbit", ep02.Radius())
	}

	ep03, thrust := EP03Departure()
	if ep03.Radius() != OrbitSaturn {
		t.Errorf("EP03 starts at %v, want Saturn orbit", ep03.Radius())
	}
	if !scalar.EqualWithinAbs(thrust.Accel()*1000, 21.66, 0.01) {
		t.Errorf("EP03 accel %v m/s², want 21.66", thrust.Accel()*1000)
	}

	ep05, thrust := EP05DecelerationBurn()
	if ep05.Radius() != 3*OrbitEarth || ep05.Vel.X != -EP05CruiseSpeed || ep05.Vel.Y != 0 {
		t.Errorf("EP05 starts at %v moving %v", ep05.Pos, ep05.Vel)
	}
	if dv := thrust.Accel() * EP05BurnDuration; !scalar.EqualWithinRel(dv, EP05DeltaV, 1e-12) {
		t.Errorf("EP05 burn spends %v km/s, want %v", dv, EP05DeltaV)
	}
	if flip, _ := thrust.Event(); flip != EP05BurnDuration/2 {
		t.Errorf("EP05 flip at %v", flip)
	}
}
