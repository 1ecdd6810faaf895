package types

type Sample_collectors interface {
	Update(s Sample)
}
