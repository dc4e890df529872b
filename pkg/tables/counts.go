package tables

// Counts is the numeric block shared by referendum records and region
// aggregates.
type Counts struct {
	Registered  int64 `json:"registered" yaml:"registered"`
	Abstentions int64 `json:"abstentions" yaml:"abstentions"`
	NullVotes   int64 `json:"null_votes" yaml:"null_votes"`
	ChoiceA     int64 `json:"choice_a" yaml:"choice_a"`
	ChoiceB     int64 `json:"choice_b" yaml:"choice_b"`
}

// Add returns the field-wise sum of c and o.
func (c Counts) Add(o Counts) Counts {
	return Counts{
		Registered:  c.Registered + o.Registered,
		Abstentions: c.Abstentions + o.Abstentions,
		NullVotes:   c.NullVotes + o.NullVotes,
		ChoiceA:     c.ChoiceA + o.ChoiceA,
		ChoiceB:     c.ChoiceB + o.ChoiceB,
	}
}

// Expressed is the number of ballots cast for either choice.
func (c Counts) Expressed() int64 {
	return c.ChoiceA + c.ChoiceB
}

// TurnoutExpressed derives expressed ballots from turnout:
// registered - abstentions - null votes.
func (c Counts) TurnoutExpressed() int64 {
	return c.Registered - c.Abstentions - c.NullVotes
}

// Balanced reports whether the ballot identity
// registered = abstentions + null_votes + choice_a + choice_b holds.
func (c Counts) Balanced() bool {
	return c.Expressed() == c.TurnoutExpressed()
}

// Fields returns the counts keyed by their column name, in column order.
func (c Counts) Fields() []Field {
	return []Field{
		{Name: "registered", Value: c.Registered},
		{Name: "abstentions", Value: c.Abstentions},
		{Name: "null_votes", Value: c.NullVotes},
		{Name: "choice_a", Value: c.ChoiceA},
		{Name: "choice_b", Value: c.ChoiceB},
	}
}

// Field is a named count.
type Field struct {
	Name  string
	Value int64
}

// SumRecords totals the counts of records.
func SumRecords(records []Record) Counts {
	var total Counts
	for _, r := range records {
		total = total.Add(r.Counts)
	}
	return total
}

// SumJoined totals the counts of joined records.
func SumJoined(joined []JoinedRecord) Counts {
	var total Counts
	for _, j := range joined {
		total = total.Add(j.Record.Counts)
	}
	return total
}

// SumAggregates totals the counts of region aggregates.
func SumAggregates(aggs []RegionAggregate) Counts {
	var total Counts
	for _, a := range aggs {
		total = total.Add(a.Counts)
	}
	return total
}
