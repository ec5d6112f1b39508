package service

import (
	"context"
	"sort"

	"soulscript-be/internal/entity"
	"soulscript-be/internal/repository/contract"
	"soulscript-be/internal/repository/specification"
	"soulscript-be/internal/repository/unitofwork"
	"soulscript-be/pkg/llm"
	"soulscript-be/pkg/moderation"
	"soulscript-be/pkg/retrieval"

	"github.com/google/uuid"
)

// In-memory doubles for the repository contracts. Specifications are
// interpreted structurally instead of being applied to a gorm query.

type fakeSessionRepo struct {
	sessions map[uuid.UUID]*entity.ChatSession
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[uuid.UUID]*entity.ChatSession)}
}

func (r *fakeSessionRepo) Create(ctx context.Context, session *entity.ChatSession) error {
	r.sessions[session.Id] = session
	return nil
}

func (r *fakeSessionRepo) Update(ctx context.Context, session *entity.ChatSession) error {
	r.sessions[session.Id] = session
	return nil
}

func (r *fakeSessionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.sessions, id)
	return nil
}

func (r *fakeSessionRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatSession, error) {
	for _, session := range r.sessions {
		if matchSession(session, specs) {
			return session, nil
		}
	}
	return nil, nil
}

func (r *fakeSessionRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatSession, error) {
	var out []*entity.ChatSession
	for _, session := range r.sessions {
		if matchSession(session, specs) {
			out = append(out, session)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeSessionRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, _ := r.FindAll(ctx, specs...)
	return int64(len(all)), nil
}

func matchSession(s *entity.ChatSession, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch v := spec.(type) {
		case specification.ByID:
			if s.Id != v.ID {
				return false
			}
		case specification.ByAnonSessionID:
			if s.AnonSessionId == nil || *s.AnonSessionId != v.Token {
				return false
			}
		case specification.OwnedByUser:
			if s.OwnerId == nil || *s.OwnerId != v.UserID {
				return false
			}
		case specification.FilterBy:
			if v.Field == "is_blocked" && s.IsBlocked != v.Value.(bool) {
				return false
			}
		}
	}
	return true
}

type fakeMessageRepo struct {
	messages []*entity.ChatMessage
}

func (r *fakeMessageRepo) Create(ctx context.Context, message *entity.ChatMessage) error {
	r.messages = append(r.messages, message)
	return nil
}

func (r *fakeMessageRepo) DeleteByChatSessionId(ctx context.Context, sessionId uuid.UUID) error {
	kept := r.messages[:0]
	for _, msg := range r.messages {
		if msg.ChatSessionId != sessionId {
			kept = append(kept, msg)
		}
	}
	r.messages = kept
	return nil
}

func (r *fakeMessageRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatMessage, error) {
	all, _ := r.FindAll(ctx, specs...)
	if len(all) == 0 {
		return nil, nil
	}
	return all[0], nil
}

func (r *fakeMessageRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatMessage, error) {
	var out []*entity.ChatMessage
	for _, msg := range r.messages {
		if matchMessage(msg, specs) {
			out = append(out, msg)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeMessageRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, _ := r.FindAll(ctx, specs...)
	return int64(len(all)), nil
}

func matchMessage(m *entity.ChatMessage, specs []specification.Specification) bool {
	for _, spec := range specs {
		if v, ok := spec.(specification.ByChatSessionID); ok && m.ChatSessionId != v.ChatSessionID {
			return false
		}
	}
	return true
}

type fakeModerationRepo struct {
	logs []*entity.ModerationLog
}

func (r *fakeModerationRepo) Create(ctx context.Context, log *entity.ModerationLog) error {
	r.logs = append(r.logs, log)
	return nil
}

func (r *fakeModerationRepo) DeleteByChatSessionId(ctx context.Context, sessionId uuid.UUID) error {
	kept := r.logs[:0]
	for _, log := range r.logs {
		if log.ChatSessionId == nil || *log.ChatSessionId != sessionId {
			kept = append(kept, log)
		}
	}
	r.logs = kept
	return nil
}

func (r *fakeModerationRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ModerationLog, error) {
	var out []*entity.ModerationLog
	for _, log := range r.logs {
		if matchLog(log, specs) {
			out = append(out, log)
		}
	}
	return out, nil
}

func (r *fakeModerationRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, _ := r.FindAll(ctx, specs...)
	return int64(len(all)), nil
}

func matchLog(l *entity.ModerationLog, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch v := spec.(type) {
		case specification.ByContentType:
			if l.ContentType.String() != v.ContentType {
				return false
			}
		case specification.CreatedSince:
			if l.CreatedAt.Before(v.Since) {
				return false
			}
		}
	}
	return true
}

type fakeFlagRepo struct {
	flags map[uuid.UUID]*entity.FeatureFlag
}

func newFakeFlagRepo() *fakeFlagRepo {
	return &fakeFlagRepo{flags: make(map[uuid.UUID]*entity.FeatureFlag)}
}

func (r *fakeFlagRepo) Create(ctx context.Context, flag *entity.FeatureFlag) error {
	r.flags[flag.Id] = flag
	return nil
}

func (r *fakeFlagRepo) Update(ctx context.Context, flag *entity.FeatureFlag) error {
	r.flags[flag.Id] = flag
	return nil
}

func (r *fakeFlagRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.flags, id)
	return nil
}

func (r *fakeFlagRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.FeatureFlag, error) {
	for _, flag := range r.flags {
		if matchFlag(flag, specs) {
			return flag, nil
		}
	}
	return nil, nil
}

func (r *fakeFlagRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.FeatureFlag, error) {
	var out []*entity.FeatureFlag
	for _, flag := range r.flags {
		if matchFlag(flag, specs) {
			out = append(out, flag)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *fakeFlagRepo) FindByName(ctx context.Context, name string) (*entity.FeatureFlag, error) {
	return r.FindOne(ctx, specification.ByName{Name: name})
}

func matchFlag(f *entity.FeatureFlag, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch v := spec.(type) {
		case specification.ByID:
			if f.Id != v.ID {
				return false
			}
		case specification.ByName:
			if f.Name != v.Name {
				return false
			}
		case specification.EnabledOnly:
			if !f.IsEnabled {
				return false
			}
		}
	}
	return true
}

type fakeChunkRepo struct{}

func (r *fakeChunkRepo) Create(ctx context.Context, chunk *entity.DocumentChunk) error { return nil }
func (r *fakeChunkRepo) DeleteByOwnerId(ctx context.Context, ownerId uuid.UUID) error  { return nil }
func (r *fakeChunkRepo) SearchSimilar(ctx context.Context, ownerId *uuid.UUID, embedding []float32, k int) ([]*entity.DocumentChunk, error) {
	return nil, nil
}
func (r *fakeChunkRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return 0, nil
}

// fakeUnitOfWork serves its repos with no real transaction semantics.
type fakeUnitOfWork struct {
	sessions   *fakeSessionRepo
	messages   *fakeMessageRepo
	moderation *fakeModerationRepo
	flags      *fakeFlagRepo
	chunks     *fakeChunkRepo

	commits   int
	rollbacks int
	commitErr error
}

func newFakeUnitOfWork() *fakeUnitOfWork {
	return &fakeUnitOfWork{
		sessions:   newFakeSessionRepo(),
		messages:   &fakeMessageRepo{},
		moderation: &fakeModerationRepo{},
		flags:      newFakeFlagRepo(),
		chunks:     &fakeChunkRepo{},
	}
}

func (u *fakeUnitOfWork) Begin(ctx context.Context) error { return nil }
func (u *fakeUnitOfWork) Commit() error {
	u.commits++
	if u.commitErr != nil {
		err := u.commitErr
		u.commitErr = nil
		return err
	}
	return nil
}
func (u *fakeUnitOfWork) Rollback() error {
	u.rollbacks++
	return nil
}

func (u *fakeUnitOfWork) ChatSessionRepository() contract.ChatSessionRepository     { return u.sessions }
func (u *fakeUnitOfWork) ChatMessageRepository() contract.ChatMessageRepository     { return u.messages }
func (u *fakeUnitOfWork) ModerationLogRepository() contract.ModerationLogRepository { return u.moderation }
func (u *fakeUnitOfWork) FeatureFlagRepository() contract.FeatureFlagRepository     { return u.flags }
func (u *fakeUnitOfWork) DocumentChunkRepository() contract.DocumentChunkRepository { return u.chunks }

type fakeFactory struct {
	uow *fakeUnitOfWork
}

func (f *fakeFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork { return f.uow }

// nopLogger satisfies logger.ILogger for services under test.
type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

// scriptedClassifier flags text by substring marker.
type scriptedClassifier struct {
	classify func(text string) (*moderation.Result, error)
}

func (c *scriptedClassifier) Classify(ctx context.Context, text string) (*moderation.Result, error) {
	return c.classify(text)
}

type stubLLM struct {
	reply  string
	err    error
	inputs [][]llm.Message
}

func (p *stubLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	p.inputs = append(p.inputs, history)
	return p.reply, p.err
}

func (p *stubLLM) ChatStream(ctx context.Context, history []llm.Message, onDelta func(delta string) error, options ...llm.Option) (string, error) {
	p.inputs = append(p.inputs, history)
	if p.err != nil {
		return "", p.err
	}
	if err := onDelta(p.reply); err != nil {
		return "", err
	}
	return p.reply, nil
}

func (p *stubLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return p.reply, p.err
}

type stubRetriever struct {
	excerpts []retrieval.Excerpt
	err      error
}

func (r *stubRetriever) Search(ctx context.Context, ownerId *uuid.UUID, query string, k int) ([]retrieval.Excerpt, error) {
	return r.excerpts, r.err
}

type capturingPublisher struct {
	payloads [][]byte
}

func (p *capturingPublisher) Publish(ctx context.Context, payload []byte) error {
	p.payloads = append(p.payloads, payload)
	return nil
}
