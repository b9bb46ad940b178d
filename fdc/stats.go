package fdc

import "context"

// Counters is a snapshot of the server's packet counters, surfacing
// the statPkts/readPkts/writePkts/outPkts/crcErrs bookkeeping the
// original server only ever wrote to its debug log.
type Counters struct {
	StatPkts  uint64
	ReadPkts  uint64
	WritePkts uint64
	OutPkts   uint64
	CrcErrs   uint64
}

// Stats returns a snapshot of the server's packet counters.
func (s *Server) Stats(ctx context.Context) (Counters, error) {
	v, err := s.do(ctx, func() (interface{}, error) {
		return Counters{
			StatPkts:  s.statPkts,
			ReadPkts:  s.readPkts,
			WritePkts: s.writePkts,
			OutPkts:   s.outPkts,
			CrcErrs:   s.crcErrs,
		}, nil
	})
	if err != nil {
		return Counters{}, err
	}
	return v.(Counters), nil
}
