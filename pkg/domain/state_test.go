package domain_test

import (
	"math"
	"testing"

	"github.com/aretw0/turtle/pkg/domain"
	"github.com/stretchr/testify/assert"
	"honnef.co/go/curve"
)

func TestPose_Default(t *testing.T) {
	p := domain.DefaultPose(curve.Pt(400, 200))
	assert.Equal(t, curve.Pt(400, 200), p.Position)
	assert.Equal(t, 0.0, p.Heading)
	assert.True(t, p.PenDown)
	assert.Equal(t, domain.Black, p.Color)
}

func TestPose_TurnNormalizes(t *testing.T) {
	p := domain.DefaultPose(curve.Pt(0, 0))
	p = p.Turn(-90)
	assert.Equal(t, 270.0, p.Heading)
	p = p.Turn(90).Turn(360)
	assert.Equal(t, 0.0, p.Heading)
	assert.Equal(t, 10.0, domain.NormalizeHeading(730))
}

func TestPose_Advance(t *testing.T) {
	tests := []struct {
		heading float64
		dist    float64
		want    curve.Point
	}{
		{0, 10, curve.Pt(0, -10)},
		{90, 10, curve.Pt(10, 0)},
		{180, 10, curve.Pt(0, 10)},
		{270, 10, curve.Pt(-10, 0)},
		{0, -5, curve.Pt(0, 5)},
	}
	for _, tt := range tests {
		p := domain.Pose{Heading: tt.heading}
		got := p.Advance(tt.dist)
		assert.InDelta(t, tt.want.X, got.X, 1e-9, "heading %v", tt.heading)
		assert.InDelta(t, tt.want.Y, got.Y, 1e-9, "heading %v", tt.heading)
	}
}

func TestPose_Finite(t *testing.T) {
	assert.True(t, domain.Pose{}.Finite())
	assert.False(t, domain.Pose{Position: curve.Pt(math.NaN(), 0)}.Finite())
	assert.False(t, domain.Pose{Position: curve.Pt(0, math.Inf(1))}.Finite())
}

func TestParseColor(t *testing.T) {
	c, ok := domain.ParseColor("RED")
	assert.True(t, ok)
	assert.Equal(t, domain.Red, c)
	_, ok = domain.ParseColor("purple")
	assert.False(t, ok)
}
