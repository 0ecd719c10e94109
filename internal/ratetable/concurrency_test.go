package ratetable

import (
	"sync"
	"testing"

	"go.uber.org/goleak"

	"github.com/yungbote/shipping-estimator/internal/domain/shipping"
)

func smallBoxKey() shipping.Key {
	return shipping.Key{SizeTier: "Small Box", WeightClass: "Light", ServiceTier: "Domestic Ground", ToCountry: "USA"}
}

func TestLookupConcurrentReaders(t *testing.T) {
	defer goleak.VerifyNone(t)

	tbl := New(sampleEntries())
	want, ok := tbl.Lookup(smallBoxKey())
	if !ok {
		t.Fatalf("expected Small Box entry")
	}

	var wg sync.WaitGroup
	errs := make(chan string, 32)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				got, ok := tbl.Lookup(smallBoxKey())
				if !ok || got != want {
					errs <- "inconsistent lookup result"
					return
				}
				_ = tbl.Options()
			}
		}()
	}
	wg.Wait()
	close(errs)
	for msg := range errs {
		t.Fatal(msg)
	}
}
