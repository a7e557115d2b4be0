package game

import "fmt"

// NumSeats is the fixed number of seats in a match.
const NumSeats = 4

// Seat is one of the four fixed positions at the table.
type Seat int

// Valid reports whether the seat index is in range.
func (s Seat) Valid() bool {
	return s >= 0 && s < NumSeats
}

// Next returns the seat to the left, wrapping around the table.
func (s Seat) Next() Seat {
	return (s + 1) % NumSeats
}

// Partner returns the seat directly across the table.
func (s Seat) Partner() Seat {
	return (s + 2) % NumSeats
}

// Side returns the partnership the seat belongs to: seats 0 and 2 form
// Side A, seats 1 and 3 form Side B.
func (s Seat) Side() Side {
	return Side(s % 2)
}

// String returns the seat as "seat0".."seat3".
func (s Seat) String() string {
	return fmt.Sprintf("seat%d", int(s))
}

// Side is one of the two partnerships.
type Side int

const (
	SideA Side = iota
	SideB
)

// Other returns the opposing side.
func (sd Side) Other() Side {
	return 1 - sd
}

// Seats returns the side's two seats in table order.
func (sd Side) Seats() [2]Seat {
	return [2]Seat{Seat(sd), Seat(sd) + 2}
}

// String returns "A" or "B".
func (sd Side) String() string {
	if sd == SideA {
		return "A"
	}
	return "B"
}
