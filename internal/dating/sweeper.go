package dating

import (
	"log"
	"time"
)

// Sweeper periodically force-transitions active speed-dating sessions
// past their deadline into waiting_reveal. The countdown itself stays a
// client-side derivation from endsAt; the sweep only guards against
// clients that never surface the decision prompt.
type Sweeper struct {
	Sessions *SessionService
	Interval time.Duration

	stopCh chan struct{}
}

// NewSweeper creates a sweeper over the session service.
func NewSweeper(sessions *SessionService, interval time.Duration) *Sweeper {
	return &Sweeper{
		Sessions: sessions,
		Interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Run blocks, sweeping on every tick until Stop is called. Meant to run
// in its own goroutine from main.
func (w *Sweeper) Run() {
	log.Println("Session expiry sweeper started.")
	ticker := time.NewTicker(w.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			swept, err := w.Sessions.SweepExpired(time.Now())
			if err != nil {
				log.Printf("ERROR: Session sweep failed: %v", err)
				continue
			}
			if swept > 0 {
				log.Printf("Swept %d expired speed-dating sessions to waiting_reveal", swept)
			}
		case <-w.stopCh:
			return
		}
	}
}

// Stop terminates the sweep loop.
func (w *Sweeper) Stop() {
	close(w.stopCh)
}
