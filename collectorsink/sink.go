package collectorsink

import "sync"

// RawLink is the subset of peerconn.Link the sink needs: a blocking,
// undecoded read. It is declared here rather than imported from
// peerconn so the package only depends on the shape it actually uses.
type RawLink interface {
	RecvRaw() ([]byte, error)
}

// Watch spawns one goroutine per link in links, each decoding and
// logging every frame that arrives until the link fails. It returns
// once every link's goroutine has exited.
func Watch(links []RawLink) {
	var wg sync.WaitGroup
	wg.Add(len(links))
	for _, l := range links {
		go func(l RawLink) {
			defer wg.Done()
			watchOne(l)
		}(l)
	}
	wg.Wait()
}

func watchOne(l RawLink) {
	for {
		b, err := l.RecvRaw()
		if err != nil {
			log.Errorf("collector link failed: %v", err)
			return
		}
		logFrame(b)
	}
}

func logFrame(b []byte) {
	frame, err := DecodeFrame(b)
	if err != nil {
		log.Warnf("discarding unreadable frame: %v", err)
		return
	}

	switch {
	case frame.Greeting != nil:
		log.Infof("bank %s connected", frame.Greeting.BankID)
	case frame.Report != nil:
		r := frame.Report
		log.Infof("bank %s reported snapshot %s: status=%d, %d recorded channel(s)",
			r.BankID, r.MarkerID, r.Status, len(r.ChannelMessages))
	}
}
