package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"wayfarer/internal/content"
	"wayfarer/internal/interfaces"
	"wayfarer/internal/models"
)

// Mode is the high-level state of the narrative state machine. Dialog and
// free scene exploration are mutually exclusive: exactly one of "no dialog
// active" and "one dialog active" holds at any time.
type Mode int

const (
	ModeExploring      Mode = iota // no dialog, hotspots active
	ModeDialogLoading              // waiting on the generation collaborator
	ModeDialogTyping               // reveal in progress, choices hidden
	ModeDialogComplete             // full text out; waiting for advance or choice
	ModeDialogFailed               // generation failed, retryable
)

func (m Mode) String() string {
	switch m {
	case ModeExploring:
		return "exploring"
	case ModeDialogLoading:
		return "dialog_loading"
	case ModeDialogTyping:
		return "dialog_typing"
	case ModeDialogComplete:
		return "dialog_complete"
	case ModeDialogFailed:
		return "dialog_failed"
	default:
		return "unknown"
	}
}

const (
	DefaultTypewriterCPS     = 40.0
	DefaultGenerationTimeout = 30 * time.Second

	// memoryContextLimit bounds how many recent memory titles ride along on
	// a generation request.
	memoryContextLimit = 5
)

// Config assembles an engine. Bundle is required; Generator is optional and
// only needed when the content contains generated dialog nodes.
type Config struct {
	Bundle            *content.Bundle
	Generator         interfaces.DialogGenerator
	TypewriterCPS     float64
	GenerationTimeout time.Duration
	SessionID         string
}

// Engine is the narrative orchestrator: a single state machine composing the
// condition evaluator, dialog resolver, scene navigator and typewriter.
// It processes one intent to completion before accepting the next; the
// engine state is the only shared mutable resource and it is owned here.
type Engine struct {
	bundle    *content.Bundle
	resolver  *DialogResolver
	navigator *SceneNavigator

	gen        interfaces.DialogGenerator
	genTimeout time.Duration
	cps        float64
	sessionID  string

	mu         sync.Mutex
	mode       Mode
	phase      models.Phase
	sceneID    string
	node       *models.DialogNode
	nodeText   string // resolved text of the active node (authored or generated)
	revealed   string
	revealDone bool
	genErr     error
	flags      FlagSet
	inventory  map[string]int
	memories   []models.MemoryEntry
	visited    []models.VisitedSpot

	tw     *Typewriter
	twSeq  uint64 // invalidates ticks of superseded typewriters
	genSeq uint64 // invalidates superseded generation results

	listeners []func(Transition)
	batch     *[]Transition // collects transitions of the in-flight dispatch

	now func() time.Time
}

// New builds an engine at the bundle's start scene with a fresh playthrough:
// empty flags, empty inventory, empty logs. Scene entry effects do not run
// at construction; the first dispatched intent drives them.
func New(cfg Config) (*Engine, error) {
	e, err := newEngine(cfg)
	if err != nil {
		return nil, err
	}
	start, ok := cfg.Bundle.Scene(cfg.Bundle.StartSceneID)
	if !ok {
		return nil, &ContentRefError{Kind: "scene", ID: cfg.Bundle.StartSceneID}
	}
	e.sceneID = start.ID
	e.phase = start.Phase
	return e, nil
}

// NewFromSave builds an engine resuming a snapshot. The caller (the save
// lifecycle manager) validates the snapshot first; the scene lookup here is
// the last line of defense.
func NewFromSave(cfg Config, save *models.GameSave) (*Engine, error) {
	e, err := newEngine(cfg)
	if err != nil {
		return nil, err
	}
	if _, ok := cfg.Bundle.Scene(save.SceneID); !ok {
		return nil, &ContentRefError{Kind: "scene", ID: save.SceneID}
	}
	e.sceneID = save.SceneID
	e.phase = save.Phase
	e.flags = NewFlagSet(save.Flags)
	for k, v := range save.Inventory {
		e.inventory[k] = v
	}
	e.memories = append(e.memories, save.Memories...)
	e.visited = append(e.visited, save.VisitedSpots...)
	return e, nil
}

func newEngine(cfg Config) (*Engine, error) {
	if cfg.Bundle == nil {
		return nil, fmt.Errorf("engine: content bundle is required")
	}
	if cfg.TypewriterCPS == 0 {
		cfg.TypewriterCPS = DefaultTypewriterCPS
	}
	if cfg.TypewriterCPS < 0 {
		return nil, fmt.Errorf("engine: typewriter speed must be positive, got %v", cfg.TypewriterCPS)
	}
	if cfg.GenerationTimeout <= 0 {
		cfg.GenerationTimeout = DefaultGenerationTimeout
	}
	return &Engine{
		bundle:     cfg.Bundle,
		resolver:   NewDialogResolver(cfg.Bundle),
		navigator:  NewSceneNavigator(cfg.Bundle),
		gen:        cfg.Generator,
		genTimeout: cfg.GenerationTimeout,
		cps:        cfg.TypewriterCPS,
		sessionID:  cfg.SessionID,
		mode:       ModeExploring,
		flags:      make(FlagSet),
		inventory:  make(map[string]int),
		now:        time.Now,
	}, nil
}

// AddListener registers a transition observer. Listeners are invoked while
// the engine lock is held and must not dispatch back into the engine.
func (e *Engine) AddListener(fn func(Transition)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listeners = append(e.listeners, fn)
}

// Dispatch processes one intent to completion and returns the ordered
// observable transitions it produced. On error the engine state is
// unchanged and the transition list is empty.
func (e *Engine) Dispatch(intent Intent) ([]Transition, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var batch []Transition
	e.batch = &batch
	defer func() { e.batch = nil }()

	var err error
	switch it := intent.(type) {
	case StartDialog:
		err = e.startDialogLocked(it.DialogID)
	case Advance:
		err = e.advanceLocked()
	case MakeChoice:
		err = e.makeChoiceLocked(it.ChoiceID)
	case ChangeScene:
		err = e.changeSceneLocked(it.SceneID)
	case ClickHotspot:
		err = e.clickHotspotLocked(it.HotspotID)
	case CompleteTypewriter:
		err = e.completeRevealLocked()
	case RetryGeneration:
		err = e.retryGenerationLocked()
	default:
		err = fmt.Errorf("engine: unknown intent %T: %w", intent, ErrInvalidIntent)
	}
	if err != nil {
		return nil, err
	}
	return batch, nil
}

// Mode returns the current state-machine mode.
func (e *Engine) Mode() Mode {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mode
}

// Snapshot projects the engine onto a GameSave. Only Exploring-state fields
// are captured: mid-dialog position is deliberately not durable, a restore
// resumes at Exploring in the current scene.
func (e *Engine) Snapshot() *models.GameSave {
	e.mu.Lock()
	defer e.mu.Unlock()

	inv := make(map[string]int, len(e.inventory))
	for k, v := range e.inventory {
		inv[k] = v
	}
	return &models.GameSave{
		Phase:        e.phase,
		SceneID:      e.sceneID,
		Flags:        e.flags.Sorted(),
		Inventory:    inv,
		Memories:     append([]models.MemoryEntry(nil), e.memories...),
		VisitedSpots: append([]models.VisitedSpot(nil), e.visited...),
	}
}

// emit records a transition in the in-flight dispatch batch (when there is
// one) and notifies listeners. Asynchronous completions (typewriter ticks,
// generation results) reach observers through listeners only.
func (e *Engine) emit(tr Transition) {
	if e.batch != nil {
		*e.batch = append(*e.batch, tr)
	}
	for _, fn := range e.listeners {
		fn(tr)
	}
}

// --- intent handlers, all called with e.mu held ---

func (e *Engine) startDialogLocked(dialogID string) error {
	node, err := e.resolver.Node(dialogID)
	if err != nil {
		return err
	}
	if node.Generated && e.gen == nil {
		return fmt.Errorf("engine: dialog %q: %w", dialogID, ErrNoGenerator)
	}

	e.cancelTypewriterLocked()
	e.node = node
	e.nodeText = ""
	e.revealed = ""
	e.revealDone = false
	e.genErr = nil

	if node.Generated {
		e.mode = ModeDialogLoading
		e.genSeq++
		e.emit(Transition{Kind: TransDialogLoading, DialogID: node.ID})
		go e.generate(e.genSeq, node, e.buildDialogRequestLocked(node))
		return nil
	}

	e.beginRevealLocked(node.Text)
	e.emit(Transition{Kind: TransDialogStarted, DialogID: node.ID})
	return nil
}

func (e *Engine) advanceLocked() error {
	switch e.mode {
	case ModeDialogTyping:
		// Completion before advancement: advancing an unfinished reveal
		// finishes the reveal, it never moves to the next node.
		return e.completeRevealLocked()

	case ModeDialogComplete:
		if len(e.resolver.AvailableChoices(e.node, e.flags)) > 0 {
			return fmt.Errorf("engine: node %q is waiting for a choice: %w", e.node.ID, ErrInvalidIntent)
		}
		if e.node.NextNodeID != "" {
			return e.startDialogLocked(e.node.NextNodeID)
		}
		// No successor and no choices is the terminal point of the thread.
		e.endDialogLocked()
		return nil

	default:
		return fmt.Errorf("engine: advance in %s: %w", e.mode, ErrInvalidIntent)
	}
}

func (e *Engine) makeChoiceLocked(choiceID string) error {
	if e.mode != ModeDialogComplete {
		return fmt.Errorf("engine: choice in %s: %w", e.mode, ErrInvalidIntent)
	}

	var choice *models.DialogChoice
	for _, c := range e.resolver.AvailableChoices(e.node, e.flags) {
		if c.ID == choiceID {
			picked := c
			choice = &picked
			break
		}
	}
	if choice == nil {
		return fmt.Errorf("engine: node %q has no visible choice %q: %w", e.node.ID, choiceID, ErrInvalidChoice)
	}

	// Validate the whole effect chain before any mutation so a rejected
	// choice leaves the engine in its prior state.
	if choice.NextNodeID != "" {
		if err := e.checkDialogStartableLocked(choice.NextNodeID); err != nil {
			return err
		}
	}
	if choice.TargetSceneID != "" {
		if err := e.checkSceneEnterableLocked(choice.TargetSceneID); err != nil {
			return err
		}
	}

	e.emit(Transition{Kind: TransChoiceMade, DialogID: e.node.ID, ChoiceID: choice.ID})
	e.addFlagsLocked(choice.SetFlags)

	switch {
	case choice.TargetSceneID != "":
		return e.changeSceneLocked(choice.TargetSceneID)
	case choice.NextNodeID != "":
		return e.startDialogLocked(choice.NextNodeID)
	default:
		e.endDialogLocked()
		return nil
	}
}

func (e *Engine) changeSceneLocked(sceneID string) error {
	scene, err := e.navigator.Scene(sceneID)
	if err != nil {
		return err
	}
	if scene.EntryDialogID != "" {
		if err := e.checkDialogStartableLocked(scene.EntryDialogID); err != nil {
			return err
		}
	}

	// A scene change cancels any in-flight reveal; no cross-talk between
	// the old and the new text stream.
	e.cancelTypewriterLocked()
	e.clearDialogLocked()
	e.sceneID = scene.ID
	e.emit(Transition{Kind: TransSceneChanged, SceneID: scene.ID})

	// Phase only ever moves forward.
	if scene.Phase.After(e.phase) {
		e.phase = scene.Phase
		e.emit(Transition{Kind: TransPhaseAdvanced, Phase: string(scene.Phase)})
	}
	e.addFlagsLocked(scene.EntryFlags)

	// Entry dialog chains as a second, discrete transition after the scene
	// change is fully applied.
	if scene.EntryDialogID != "" {
		return e.startDialogLocked(scene.EntryDialogID)
	}
	return nil
}

func (e *Engine) clickHotspotLocked(hotspotID string) error {
	if e.mode != ModeExploring {
		return fmt.Errorf("engine: hotspots are inactive in %s: %w", e.mode, ErrInvalidIntent)
	}
	scene, err := e.navigator.Scene(e.sceneID)
	if err != nil {
		return err
	}
	res, hotspot, err := e.navigator.ResolveHotspot(scene, hotspotID, e.flags)
	if err != nil {
		return err
	}

	// Validate the resolution target before recording the visit; a click
	// that cannot take effect leaves the log untouched.
	switch {
	case res.StartDialogID != "":
		if err := e.checkDialogStartableLocked(res.StartDialogID); err != nil {
			return err
		}
	case res.ChangeSceneID != "":
		if err := e.checkSceneEnterableLocked(res.ChangeSceneID); err != nil {
			return err
		}
	case res.RunActionID != "":
		if _, ok := e.bundle.Action(res.RunActionID); !ok {
			return &ContentRefError{Kind: "action", ID: res.RunActionID}
		}
	}

	e.visited = append(e.visited, models.VisitedSpot{
		SceneID:   scene.ID,
		HotspotID: hotspot.ID,
		VisitedAt: e.now(),
	})

	switch {
	case res.StartDialogID != "":
		return e.startDialogLocked(res.StartDialogID)
	case res.ChangeSceneID != "":
		return e.changeSceneLocked(res.ChangeSceneID)
	case res.PickupItemID != "":
		e.inventory[res.PickupItemID]++
		e.emit(Transition{Kind: TransItemAdded, ItemID: res.PickupItemID})
		return nil
	case res.RunActionID != "":
		return e.runActionLocked(res.RunActionID)
	}
	return fmt.Errorf("engine: hotspot %q resolved to nothing: %w", hotspotID, ErrInvalidIntent)
}

func (e *Engine) runActionLocked(actionID string) error {
	action, ok := e.bundle.Action(actionID)
	if !ok {
		return &ContentRefError{Kind: "action", ID: actionID}
	}
	e.emit(Transition{Kind: TransActionRun, ActionID: action.ID})
	e.addFlagsLocked(action.SetFlags)
	for item, qty := range action.AddItems {
		e.inventory[item] += qty
		e.emit(Transition{Kind: TransItemAdded, ItemID: item})
	}
	if action.Memory != nil {
		entry := *action.Memory
		entry.CollectedAt = e.now()
		e.memories = append(e.memories, entry)
		e.emit(Transition{Kind: TransMemoryAdded, ActionID: action.ID})
	}
	return nil
}

func (e *Engine) completeRevealLocked() error {
	switch e.mode {
	case ModeDialogTyping:
		full, _ := e.tw.Complete()
		e.revealed = full
		e.revealDone = true
		e.mode = ModeDialogComplete
		e.emit(Transition{Kind: TransDialogCompleted, DialogID: e.node.ID})
		return nil
	case ModeDialogComplete:
		// Already complete; idempotent.
		return nil
	default:
		return fmt.Errorf("engine: no reveal to complete in %s: %w", e.mode, ErrInvalidIntent)
	}
}

func (e *Engine) retryGenerationLocked() error {
	if e.mode != ModeDialogFailed || e.node == nil {
		return fmt.Errorf("engine: nothing to retry in %s: %w", e.mode, ErrInvalidIntent)
	}
	e.genErr = nil
	e.mode = ModeDialogLoading
	e.genSeq++
	e.emit(Transition{Kind: TransDialogLoading, DialogID: e.node.ID})
	go e.generate(e.genSeq, e.node, e.buildDialogRequestLocked(e.node))
	return nil
}

// --- internal helpers, all called with e.mu held ---

// checkDialogStartableLocked rejects a dialog start before any state is
// touched: the node must exist, and a generated node needs the generation
// collaborator. Handlers that mutate state ahead of startDialogLocked run
// this first so a rejection leaves the engine in its prior state.
func (e *Engine) checkDialogStartableLocked(dialogID string) error {
	node, ok := e.bundle.Dialog(dialogID)
	if !ok {
		return &ContentRefError{Kind: "dialog", ID: dialogID}
	}
	if node.Generated && e.gen == nil {
		return fmt.Errorf("engine: dialog %q: %w", dialogID, ErrNoGenerator)
	}
	return nil
}

// checkSceneEnterableLocked rejects a scene change whose chained entry
// dialog could not start.
func (e *Engine) checkSceneEnterableLocked(sceneID string) error {
	scene, ok := e.bundle.Scene(sceneID)
	if !ok {
		return &ContentRefError{Kind: "scene", ID: sceneID}
	}
	if scene.EntryDialogID != "" {
		return e.checkDialogStartableLocked(scene.EntryDialogID)
	}
	return nil
}

// addFlagsLocked adds flags, emitting one transition per newly set flag.
// Flags are never removed; monotonic progress is preserved here.
func (e *Engine) addFlagsLocked(flags []string) {
	for _, f := range flags {
		if e.flags.Add(f) {
			e.emit(Transition{Kind: TransFlagSet, Flag: f})
		}
	}
}

func (e *Engine) beginRevealLocked(text string) {
	e.nodeText = text
	e.revealed = ""
	e.revealDone = false
	e.mode = ModeDialogTyping
	e.twSeq++
	seq := e.twSeq
	tw, err := NewTypewriter(text, e.cps, func(prefix string, done bool) {
		e.handleTick(seq, prefix, done)
	})
	if err != nil {
		// cps was validated at construction; this cannot happen.
		log.Printf("[Engine] typewriter setup failed: %v", err)
		e.revealed = text
		e.revealDone = true
		e.mode = ModeDialogComplete
		return
	}
	e.tw = tw
	_ = tw.Start()
}

func (e *Engine) cancelTypewriterLocked() {
	if e.tw != nil {
		e.tw.Cancel()
		e.tw = nil
	}
	e.twSeq++ // pending ticks of the old reveal become stale
}

func (e *Engine) clearDialogLocked() {
	e.node = nil
	e.nodeText = ""
	e.revealed = ""
	e.revealDone = false
	e.genErr = nil
	e.mode = ModeExploring
}

func (e *Engine) endDialogLocked() {
	dialogID := ""
	if e.node != nil {
		dialogID = e.node.ID
	}
	e.cancelTypewriterLocked()
	e.clearDialogLocked()
	e.emit(Transition{Kind: TransDialogEnded, DialogID: dialogID})
}

// handleTick applies a typewriter tick. Ticks of superseded reveals carry a
// stale sequence number and are dropped.
func (e *Engine) handleTick(seq uint64, prefix string, done bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if seq != e.twSeq || e.mode != ModeDialogTyping {
		return
	}
	e.revealed = prefix
	if done {
		e.revealDone = true
		e.mode = ModeDialogComplete
		e.emit(Transition{Kind: TransDialogCompleted, DialogID: e.node.ID})
	}
}

func (e *Engine) buildDialogRequestLocked(node *models.DialogNode) *interfaces.DialogRequest {
	scene, _ := e.bundle.Scene(e.sceneID)
	speaker := e.resolver.ResolveSpeaker(node.SpeakerID, node.Emotion)

	var memories []string
	start := len(e.memories) - memoryContextLimit
	if start < 0 {
		start = 0
	}
	for _, m := range e.memories[start:] {
		memories = append(memories, m.Title)
	}

	req := &interfaces.DialogRequest{
		SessionID:   e.sessionID,
		SceneID:     e.sceneID,
		NodeID:      node.ID,
		SpeakerID:   node.SpeakerID,
		SpeakerName: speaker.Name,
		Prompt:      node.Prompt,
		Flags:       e.flags.Sorted(),
		Memories:    memories,
	}
	if scene != nil {
		req.SceneName = scene.Name
		req.SceneDescription = scene.Description
	}
	return req
}

// generate runs off the dispatch goroutine; the engine stays responsive
// while the collaborator works. Results of superseded requests (a new
// dialog or scene started meanwhile) are discarded by sequence number.
func (e *Engine) generate(seq uint64, node *models.DialogNode, req *interfaces.DialogRequest) {
	ctx, cancel := context.WithTimeout(context.Background(), e.genTimeout)
	defer cancel()

	res, err := e.gen.GenerateDialog(ctx, req)

	e.mu.Lock()
	defer e.mu.Unlock()
	if seq != e.genSeq || e.mode != ModeDialogLoading {
		return
	}

	if err != nil {
		e.genErr = ErrGenerationFailed
		if errors.Is(err, context.DeadlineExceeded) {
			e.genErr = ErrGenerationTimeout
		}
		e.mode = ModeDialogFailed
		log.Printf("[Engine] dialog generation for %q failed: %v", node.ID, err)
		e.emit(Transition{Kind: TransDialogFailed, DialogID: node.ID, Error: e.genErr.Error()})
		return
	}

	e.beginRevealLocked(res.Text)
	e.emit(Transition{Kind: TransDialogStarted, DialogID: node.ID})
}
