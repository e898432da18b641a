package valkey

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/valkey-io/valkey-go"

	"github.com/samirrijal/mietradar/internal/core/domain"
)

const keyPrefix = "mietradar:obs:"

// ObservationStore implements ports.ObservationRepository on Valkey lists so
// several API replicas share one user partition. Each category is a list of
// JSON elements; a counter key hands out sequence numbers.
type ObservationStore struct {
	client valkey.Client
	prefix string
}

// New connects to Valkey.
func New(addr string) (*ObservationStore, error) {
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress: []string{addr},
	})
	if err != nil {
		return nil, fmt.Errorf("valkey connect: %w", err)
	}
	return &ObservationStore{client: client, prefix: keyPrefix}, nil
}

// WithPrefix namespaces all keys, e.g. per test run.
func (s *ObservationStore) WithPrefix(prefix string) *ObservationStore {
	s.prefix = prefix
	return s
}

func (s *ObservationStore) listKey(category domain.DwellingCategory) string {
	return s.prefix + string(category)
}

func (s *ObservationStore) seqKey() string {
	return s.prefix + "seq"
}

// Append assigns the next sequence number and pushes obs to its category list.
func (s *ObservationStore) Append(ctx context.Context, obs *domain.RentObservation) error {
	seq, err := s.client.Do(ctx, s.client.B().Incr().Key(s.seqKey()).Build()).AsInt64()
	if err != nil {
		return fmt.Errorf("next seq: %w", err)
	}
	obs.Seq = seq

	data, err := json.Marshal(obs)
	if err != nil {
		return fmt.Errorf("encode observation: %w", err)
	}
	cmd := s.client.B().Rpush().Key(s.listKey(obs.Category)).Element(string(data)).Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("rpush: %w", err)
	}
	return nil
}

// List returns the category list in insertion order.
func (s *ObservationStore) List(ctx context.Context, category domain.DwellingCategory) ([]domain.RentObservation, error) {
	raw, err := s.client.Do(ctx, s.client.B().Lrange().Key(s.listKey(category)).Start(0).Stop(-1).Build()).AsStrSlice()
	if err != nil {
		return nil, fmt.Errorf("lrange: %w", err)
	}
	return decodeAll(raw)
}

// Replace overwrites the element at index, keeping its seq and date entered.
// The length check and LSET are not atomic; a concurrent removal makes LSET
// fail with an out-of-range error.
func (s *ObservationStore) Replace(ctx context.Context, category domain.DwellingCategory, index int, obs *domain.RentObservation) (bool, error) {
	current, ok, err := s.at(ctx, category, index)
	if err != nil || !ok {
		return false, err
	}
	obs.Seq = current.Seq
	obs.DateEntered = current.DateEntered

	data, err := json.Marshal(obs)
	if err != nil {
		return false, fmt.Errorf("encode observation: %w", err)
	}
	cmd := s.client.B().Lset().Key(s.listKey(category)).Index(int64(index)).Element(string(data)).Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return false, fmt.Errorf("lset: %w", err)
	}
	return true, nil
}

// Remove deletes the element at index. The element is read first and then
// removed by value, which is unique because of its seq.
func (s *ObservationStore) Remove(ctx context.Context, category domain.DwellingCategory, index int) (bool, error) {
	if index < 0 {
		return false, nil
	}
	raw, err := s.client.Do(ctx, s.client.B().Lindex().Key(s.listKey(category)).Index(int64(index)).Build()).ToString()
	if valkey.IsValkeyNil(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lindex: %w", err)
	}
	cmd := s.client.B().Lrem().Key(s.listKey(category)).Count(1).Element(raw).Build()
	removed, err := s.client.Do(ctx, cmd).AsInt64()
	if err != nil {
		return false, fmt.Errorf("lrem: %w", err)
	}
	return removed > 0, nil
}

// Clear deletes the category list.
func (s *ObservationStore) Clear(ctx context.Context, category domain.DwellingCategory) error {
	if err := s.client.Do(ctx, s.client.B().Del().Key(s.listKey(category)).Build()).Error(); err != nil {
		return fmt.Errorf("del: %w", err)
	}
	return nil
}

// Latest scans the last element of every category list and returns the one
// with the highest seq.
func (s *ObservationStore) Latest(ctx context.Context) (*domain.RentObservation, error) {
	var candidates []domain.RentObservation
	for _, category := range domain.Categories {
		raw, err := s.client.Do(ctx, s.client.B().Lindex().Key(s.listKey(category)).Index(-1).Build()).ToString()
		if valkey.IsValkeyNil(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("lindex: %w", err)
		}
		o, err := decode(raw)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, *o)
	}
	return latestOf(candidates), nil
}

// Ping checks connectivity.
func (s *ObservationStore) Ping(ctx context.Context) error {
	return s.client.Do(ctx, s.client.B().Ping().Build()).Error()
}

// Close releases the client.
func (s *ObservationStore) Close() {
	s.client.Close()
}

func (s *ObservationStore) at(ctx context.Context, category domain.DwellingCategory, index int) (*domain.RentObservation, bool, error) {
	if index < 0 {
		return nil, false, nil
	}
	n, err := s.client.Do(ctx, s.client.B().Llen().Key(s.listKey(category)).Build()).AsInt64()
	if err != nil {
		return nil, false, fmt.Errorf("llen: %w", err)
	}
	if int64(index) >= n {
		return nil, false, nil
	}
	raw, err := s.client.Do(ctx, s.client.B().Lindex().Key(s.listKey(category)).Index(int64(index)).Build()).ToString()
	if valkey.IsValkeyNil(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("lindex: %w", err)
	}
	o, err := decode(raw)
	if err != nil {
		return nil, false, err
	}
	return o, true, nil
}

func decode(raw string) (*domain.RentObservation, error) {
	var o domain.RentObservation
	if err := json.Unmarshal([]byte(raw), &o); err != nil {
		return nil, fmt.Errorf("decode observation: %w", err)
	}
	return &o, nil
}

func decodeAll(raw []string) ([]domain.RentObservation, error) {
	out := make([]domain.RentObservation, 0, len(raw))
	for _, r := range raw {
		o, err := decode(r)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, nil
}

func latestOf(list []domain.RentObservation) *domain.RentObservation {
	var latest *domain.RentObservation
	for i := range list {
		if latest == nil || list[i].Seq > latest.Seq {
			latest = &list[i]
		}
	}
	return latest
}
