package actorsys

// Producer builds a new Actor instance.
type Producer func() Actor

// Props configures how an actor is produced.
type Props struct {
	producer Producer
}

// NewProps wraps a Producer in a Props.
func NewProps(producer Producer) *Props {
	if producer == nil {
		panic("actorsys: producer cannot be nil")
	}
	return &Props{producer: producer}
}

// Produce creates a new actor instance.
func (p *Props) Produce() Actor {
	return p.producer()
}
