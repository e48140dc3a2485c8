package sim

import (
	"math/rand"
	randv2 "math/rand/v2"

	"github.com/brianvoe/gofakeit/v7"
)

// NameSource produces display names for students.
type NameSource interface {
	Name() string
}

// FakerNames draws "First Last" names from gofakeit's person data.
type FakerNames struct {
	faker *gofakeit.Faker
}

// NewFakerNames seeds a faker from two draws of rng, so names are a pure
// function of the stream they were created from.
func NewFakerNames(rng *rand.Rand) *FakerNames {
	src := randv2.NewPCG(rng.Uint64(), rng.Uint64())
	return &FakerNames{faker: gofakeit.NewFaker(src, false)}
}

func (n *FakerNames) Name() string {
	return n.faker.FirstName() + " " + n.faker.LastName()
}
