package evaluation

import "sort"

// PeerSummary is the aggregate of every evaluation a peer received.
// Mean includes the peer's self-evaluation; SelfScore reports it separately so it can be reviewed.
type PeerSummary struct {
	PeerName  string   `json:"peer_name"`
	PeerID    string   `json:"peer_id"`
	Mean      float64  `json:"mean_score"`
	Count     int      `json:"evaluations"`
	SelfScore *float64 `json:"self_score,omitempty"`
}

// IncludesSelf reports whether Mean counts the peer's own evaluation.
func (p PeerSummary) IncludesSelf() bool { return p.SelfScore != nil }

type Summary struct {
	Peers []PeerSummary `json:"peers"` // sorted by name
	index map[string]int
}

// Summarize computes the mean overall score received by each peer, whoever the evaluator.
// Self-evaluations count equally with peer evaluations.
func Summarize(rows []Row) Summary {
	type acc struct {
		id    string
		sum   float64
		count int
		self  *float64
	}
	accs := make(map[string]*acc)
	for _, r := range rows {
		a, ok := accs[r.PeerName]
		if !ok {
			a = &acc{id: r.PeerID}
			accs[r.PeerName] = a
		}
		a.sum += r.Overall
		a.count++
		if r.IsSelf() {
			self := r.Overall
			a.self = &self
		}
	}

	sum := Summary{
		Peers: make([]PeerSummary, 0, len(accs)),
		index: make(map[string]int, len(accs)),
	}
	for name, a := range accs {
		sum.Peers = append(sum.Peers, PeerSummary{
			PeerName:  name,
			PeerID:    a.id,
			Mean:      a.sum / float64(a.count),
			Count:     a.count,
			SelfScore: a.self,
		})
	}
	sort.Slice(sum.Peers, func(i, j int) bool { return sum.Peers[i].PeerName < sum.Peers[j].PeerName })
	for i, p := range sum.Peers {
		sum.index[p.PeerName] = i
	}
	return sum
}

// Empty reports whether there is no data at all.
func (s Summary) Empty() bool { return len(s.Peers) == 0 }

// Lookup returns the mean score received by peer; ok is false when there is no data for them.
func (s Summary) Lookup(peer string) (mean float64, ok bool) {
	i, ok := s.index[peer]
	if !ok {
		return 0, false
	}
	return s.Peers[i].Mean, true
}

// Means maps each peer name to their mean received score.
func (s Summary) Means() map[string]float64 {
	m := make(map[string]float64, len(s.Peers))
	for _, p := range s.Peers {
		m[p.PeerName] = p.Mean
	}
	return m
}
