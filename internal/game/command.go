package game

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidCommand is wrapped by every command validation failure. Invalid
// commands are rejected before the turn runs and are never partially applied.
var ErrInvalidCommand = errors.New("invalid command")

// Command is a validated player intent. The AI opponent submits the exact
// same command types through the same path as a human player; nothing in the
// engine can tell them apart. Validate runs against the pre-turn snapshot;
// Apply mutates it only after validation passed.
type Command interface {
	Empire() EmpireID
	Validate(g *GameState) error
	Apply(g *GameState)
}

// ownedFleet resolves a fleet id and checks ownership.
func ownedFleet(g *GameState, empire EmpireID, id FleetID) (*Fleet, error) {
	f := g.Fleets[id]
	if f == nil {
		return nil, fmt.Errorf("%w: fleet %d does not exist", ErrInvalidCommand, id)
	}
	if f.Owner != empire {
		return nil, fmt.Errorf("%w: fleet %d not owned by empire %d", ErrInvalidCommand, id, empire)
	}
	return f, nil
}

// ownedStar resolves a star id and checks ownership.
func ownedStar(g *GameState, empire EmpireID, id StarID) (*Star, error) {
	s := g.Stars[id]
	if s == nil {
		return nil, fmt.Errorf("%w: star %d does not exist", ErrInvalidCommand, id)
	}
	if s.Owner != empire {
		return nil, fmt.Errorf("%w: star %d not owned by empire %d", ErrInvalidCommand, id, empire)
	}
	return s, nil
}

func validateWaypoint(g *GameState, wp Waypoint) error {
	if wp.Warp < 1 || wp.Warp > 10 {
		return fmt.Errorf("%w: warp %d outside 1..10", ErrInvalidCommand, wp.Warp)
	}
	if wp.TargetStar != 0 {
		if g.Stars[wp.TargetStar] == nil {
			return fmt.Errorf("%w: waypoint targets unknown star %d", ErrInvalidCommand, wp.TargetStar)
		}
	} else if math.IsNaN(wp.Target.X) || math.IsNaN(wp.Target.Y) ||
		math.IsInf(wp.Target.X, 0) || math.IsInf(wp.Target.Y, 0) {
		return fmt.Errorf("%w: malformed waypoint destination", ErrInvalidCommand)
	}
	return nil
}

// resolveWaypoint pins a star-targeted waypoint to the star's position.
func resolveWaypoint(g *GameState, wp Waypoint) Waypoint {
	if wp.TargetStar != 0 {
		if s := g.Stars[wp.TargetStar]; s != nil {
			wp.Target = s.Position
		}
	}
	return wp
}

// --- Waypoint commands ---

// AddWaypointCommand appends or inserts a waypoint on a fleet's queue.
// Index -1 appends; otherwise the waypoint is inserted before Index.
type AddWaypointCommand struct {
	EmpireID EmpireID
	Fleet    FleetID
	Index    int
	Waypoint Waypoint
}

func (c AddWaypointCommand) Empire() EmpireID { return c.EmpireID }

func (c AddWaypointCommand) Validate(g *GameState) error {
	f, err := ownedFleet(g, c.EmpireID, c.Fleet)
	if err != nil {
		return err
	}
	if c.Index != -1 && (c.Index < 0 || c.Index > len(f.Waypoints)) {
		return fmt.Errorf("%w: waypoint index %d out of range", ErrInvalidCommand, c.Index)
	}
	return validateWaypoint(g, c.Waypoint)
}

func (c AddWaypointCommand) Apply(g *GameState) {
	f := g.Fleets[c.Fleet]
	wp := resolveWaypoint(g, c.Waypoint)
	if c.Index == -1 || c.Index >= len(f.Waypoints) {
		f.Waypoints = append(f.Waypoints, wp)
		return
	}
	f.Waypoints = append(f.Waypoints[:c.Index],
		append([]Waypoint{wp}, f.Waypoints[c.Index:]...)...)
}

// UpdateWaypointCommand replaces the waypoint at Index.
type UpdateWaypointCommand struct {
	EmpireID EmpireID
	Fleet    FleetID
	Index    int
	Waypoint Waypoint
}

func (c UpdateWaypointCommand) Empire() EmpireID { return c.EmpireID }

func (c UpdateWaypointCommand) Validate(g *GameState) error {
	f, err := ownedFleet(g, c.EmpireID, c.Fleet)
	if err != nil {
		return err
	}
	if c.Index < 0 || c.Index >= len(f.Waypoints) {
		return fmt.Errorf("%w: waypoint index %d out of range", ErrInvalidCommand, c.Index)
	}
	return validateWaypoint(g, c.Waypoint)
}

func (c UpdateWaypointCommand) Apply(g *GameState) {
	g.Fleets[c.Fleet].Waypoints[c.Index] = resolveWaypoint(g, c.Waypoint)
}

// DeleteWaypointCommand removes the waypoint at Index.
type DeleteWaypointCommand struct {
	EmpireID EmpireID
	Fleet    FleetID
	Index    int
}

func (c DeleteWaypointCommand) Empire() EmpireID { return c.EmpireID }

func (c DeleteWaypointCommand) Validate(g *GameState) error {
	f, err := ownedFleet(g, c.EmpireID, c.Fleet)
	if err != nil {
		return err
	}
	if c.Index < 0 || c.Index >= len(f.Waypoints) {
		return fmt.Errorf("%w: waypoint index %d out of range", ErrInvalidCommand, c.Index)
	}
	return nil
}

func (c DeleteWaypointCommand) Apply(g *GameState) {
	f := g.Fleets[c.Fleet]
	f.Waypoints = append(f.Waypoints[:c.Index], f.Waypoints[c.Index+1:]...)
}

// --- Production commands ---

// EnqueueProductionCommand adds an order to a star's production queue.
// Index -1 appends.
type EnqueueProductionCommand struct {
	EmpireID EmpireID
	Star     StarID
	Index    int
	Item     ProductionItem
}

func (c EnqueueProductionCommand) Empire() EmpireID { return c.EmpireID }

func (c EnqueueProductionCommand) Validate(g *GameState) error {
	s, err := ownedStar(g, c.EmpireID, c.Star)
	if err != nil {
		return err
	}
	if c.Index != -1 && (c.Index < 0 || c.Index > len(s.Queue)) {
		return fmt.Errorf("%w: queue index %d out of range", ErrInvalidCommand, c.Index)
	}
	if c.Item.Quantity <= 0 {
		return fmt.Errorf("%w: quantity %d must be positive", ErrInvalidCommand, c.Item.Quantity)
	}
	if c.Item.Progress != 0 {
		return fmt.Errorf("%w: queue items are enqueued without progress", ErrInvalidCommand)
	}
	if c.Item.Kind == BuildShip {
		d := g.Designs[c.Item.Design]
		if d == nil {
			return fmt.Errorf("%w: unknown design %d", ErrInvalidCommand, c.Item.Design)
		}
		if d.Owner != c.EmpireID {
			return fmt.Errorf("%w: design %d not owned by empire %d", ErrInvalidCommand, c.Item.Design, c.EmpireID)
		}
		if d.Obsolete {
			return fmt.Errorf("%w: design %d is obsolete", ErrInvalidCommand, c.Item.Design)
		}
	}
	return nil
}

func (c EnqueueProductionCommand) Apply(g *GameState) {
	s := g.Stars[c.Star]
	if c.Index == -1 || c.Index >= len(s.Queue) {
		s.Queue = append(s.Queue, c.Item)
		return
	}
	s.Queue = append(s.Queue[:c.Index],
		append([]ProductionItem{c.Item}, s.Queue[c.Index:]...)...)
}

// RemoveProductionCommand drops the queue entry at Index, losing any
// progress sunk into it.
type RemoveProductionCommand struct {
	EmpireID EmpireID
	Star     StarID
	Index    int
}

func (c RemoveProductionCommand) Empire() EmpireID { return c.EmpireID }

func (c RemoveProductionCommand) Validate(g *GameState) error {
	s, err := ownedStar(g, c.EmpireID, c.Star)
	if err != nil {
		return err
	}
	if c.Index < 0 || c.Index >= len(s.Queue) {
		return fmt.Errorf("%w: queue index %d out of range", ErrInvalidCommand, c.Index)
	}
	return nil
}

func (c RemoveProductionCommand) Apply(g *GameState) {
	s := g.Stars[c.Star]
	s.Queue = append(s.Queue[:c.Index], s.Queue[c.Index+1:]...)
}

// ReorderProductionCommand moves the entry at From so it sits at To.
type ReorderProductionCommand struct {
	EmpireID EmpireID
	Star     StarID
	From     int
	To       int
}

func (c ReorderProductionCommand) Empire() EmpireID { return c.EmpireID }

func (c ReorderProductionCommand) Validate(g *GameState) error {
	s, err := ownedStar(g, c.EmpireID, c.Star)
	if err != nil {
		return err
	}
	if c.From < 0 || c.From >= len(s.Queue) || c.To < 0 || c.To >= len(s.Queue) {
		return fmt.Errorf("%w: reorder %d->%d out of range", ErrInvalidCommand, c.From, c.To)
	}
	return nil
}

func (c ReorderProductionCommand) Apply(g *GameState) {
	s := g.Stars[c.Star]
	item := s.Queue[c.From]
	s.Queue = append(s.Queue[:c.From], s.Queue[c.From+1:]...)
	s.Queue = append(s.Queue[:c.To],
		append([]ProductionItem{item}, s.Queue[c.To:]...)...)
}

// --- Research commands ---

// SetResearchCommand sets an empire's research field and budget fraction.
type SetResearchCommand struct {
	EmpireID EmpireID
	Field    ResearchField
	Budget   float64
}

func (c SetResearchCommand) Empire() EmpireID { return c.EmpireID }

func (c SetResearchCommand) Validate(g *GameState) error {
	if g.Empires[c.EmpireID] == nil {
		return fmt.Errorf("%w: empire %d does not exist", ErrInvalidCommand, c.EmpireID)
	}
	if c.Field < 0 || c.Field >= numResearchFields {
		return fmt.Errorf("%w: unknown research field %d", ErrInvalidCommand, c.Field)
	}
	if c.Budget < 0 || c.Budget > 1 || math.IsNaN(c.Budget) {
		return fmt.Errorf("%w: research budget %.2f outside 0..1", ErrInvalidCommand, c.Budget)
	}
	return nil
}

func (c SetResearchCommand) Apply(g *GameState) {
	e := g.Empires[c.EmpireID]
	if e.Research.Field != c.Field {
		// Switching fields parks accumulated progress with the old field's
		// next level; the simple model just keeps the single pool.
		e.Research.Field = c.Field
	}
	e.Research.Budget = c.Budget
}

// --- Design commands ---

// AddDesignCommand registers a new ship design for the empire.
type AddDesignCommand struct {
	EmpireID EmpireID
	Design   ShipDesign
}

func (c AddDesignCommand) Empire() EmpireID { return c.EmpireID }

func (c AddDesignCommand) Validate(g *GameState) error {
	if c.Design.ID == 0 {
		return fmt.Errorf("%w: design id must be nonzero", ErrInvalidCommand)
	}
	if g.Designs[c.Design.ID] != nil {
		return fmt.Errorf("%w: design id %d already taken", ErrInvalidCommand, c.Design.ID)
	}
	if c.Design.Mass <= 0 || c.Design.Armor <= 0 {
		return fmt.Errorf("%w: design needs positive mass and armor", ErrInvalidCommand)
	}
	return nil
}

func (c AddDesignCommand) Apply(g *GameState) {
	d := c.Design
	d.Owner = c.EmpireID
	g.Designs[d.ID] = &d
}

// EditDesignCommand replaces a design's stats in place. Ships in flight keep
// the hull they launched with, so an edit is only legal while no ships of
// the design exist.
type EditDesignCommand struct {
	EmpireID EmpireID
	Design   ShipDesign
}

func (c EditDesignCommand) Empire() EmpireID { return c.EmpireID }

func (c EditDesignCommand) Validate(g *GameState) error {
	cur := g.Designs[c.Design.ID]
	if cur == nil {
		return fmt.Errorf("%w: design %d does not exist", ErrInvalidCommand, c.Design.ID)
	}
	if cur.Owner != c.EmpireID {
		return fmt.Errorf("%w: design %d not owned by empire %d", ErrInvalidCommand, c.Design.ID, c.EmpireID)
	}
	if c.Design.Mass <= 0 || c.Design.Armor <= 0 {
		return fmt.Errorf("%w: design needs positive mass and armor", ErrInvalidCommand)
	}
	for _, fid := range g.FleetIDs() {
		for _, tok := range g.Fleets[fid].Tokens {
			if tok.Design == c.Design.ID && tok.Quantity > 0 {
				return fmt.Errorf("%w: design %d has ships in flight", ErrInvalidCommand, c.Design.ID)
			}
		}
	}
	return nil
}

func (c EditDesignCommand) Apply(g *GameState) {
	d := c.Design
	d.Owner = c.EmpireID
	d.Obsolete = g.Designs[d.ID].Obsolete
	g.Designs[d.ID] = &d
}

// ObsoleteDesignCommand marks a design obsolete: ships in flight keep
// flying, but production can no longer queue it.
type ObsoleteDesignCommand struct {
	EmpireID EmpireID
	Design   DesignID
}

func (c ObsoleteDesignCommand) Empire() EmpireID { return c.EmpireID }

func (c ObsoleteDesignCommand) Validate(g *GameState) error {
	d := g.Designs[c.Design]
	if d == nil {
		return fmt.Errorf("%w: design %d does not exist", ErrInvalidCommand, c.Design)
	}
	if d.Owner != c.EmpireID {
		return fmt.Errorf("%w: design %d not owned by empire %d", ErrInvalidCommand, c.Design, c.EmpireID)
	}
	return nil
}

func (c ObsoleteDesignCommand) Apply(g *GameState) {
	g.Designs[c.Design].Obsolete = true
}

// --- Fleet organization commands ---

// SetBattlePlanCommand replaces a fleet's standing battle plan.
type SetBattlePlanCommand struct {
	EmpireID EmpireID
	Fleet    FleetID
	Plan     BattlePlan
}

func (c SetBattlePlanCommand) Empire() EmpireID { return c.EmpireID }

func (c SetBattlePlanCommand) Validate(g *GameState) error {
	_, err := ownedFleet(g, c.EmpireID, c.Fleet)
	return err
}

func (c SetBattlePlanCommand) Apply(g *GameState) {
	g.Fleets[c.Fleet].Plan = c.Plan
}

// SplitFleetCommand moves Quantity ships of one token into a brand new fleet
// at the same position. Fuel and cargo split pro rata by ship count.
type SplitFleetCommand struct {
	EmpireID   EmpireID
	Fleet      FleetID
	TokenIndex int
	Quantity   int
}

func (c SplitFleetCommand) Empire() EmpireID { return c.EmpireID }

func (c SplitFleetCommand) Validate(g *GameState) error {
	f, err := ownedFleet(g, c.EmpireID, c.Fleet)
	if err != nil {
		return err
	}
	if c.TokenIndex < 0 || c.TokenIndex >= len(f.Tokens) {
		return fmt.Errorf("%w: token index %d out of range", ErrInvalidCommand, c.TokenIndex)
	}
	tok := f.Tokens[c.TokenIndex]
	if c.Quantity <= 0 || c.Quantity >= tok.Quantity {
		// Splitting everything off is a rename, not a split.
		return fmt.Errorf("%w: split quantity %d outside 1..%d", ErrInvalidCommand, c.Quantity, tok.Quantity-1)
	}
	return nil
}

func (c SplitFleetCommand) Apply(g *GameState) {
	f := g.Fleets[c.Fleet]
	tok := &f.Tokens[c.TokenIndex]
	before := f.TotalShips()
	tok.Quantity -= c.Quantity

	frac := float64(c.Quantity) / float64(before)
	nf := &Fleet{
		ID:       g.AllocFleetID(),
		Owner:    f.Owner,
		Position: f.Position,
		Fuel:     int(float64(f.Fuel) * frac),
		Cargo: Cargo{
			Minerals:  f.Cargo.Minerals.Scale(frac),
			Colonists: int(float64(f.Cargo.Colonists) * frac),
		},
		Tokens: []ShipToken{{Design: tok.Design, Quantity: c.Quantity}},
		Plan:   f.Plan,
	}
	nf.Name = fmt.Sprintf("Fleet #%d", nf.ID)
	f.Fuel -= nf.Fuel
	f.Cargo.Minerals = f.Cargo.Minerals.Subtract(nf.Cargo.Minerals)
	f.Cargo.Colonists -= nf.Cargo.Colonists
	g.Fleets[nf.ID] = nf
}

// MergeFleetsCommand schedules Source to be folded into Target by the
// split/merge cleanup step, once both are at the same position at end of
// turn.
type MergeFleetsCommand struct {
	EmpireID EmpireID
	Source   FleetID
	Target   FleetID
}

func (c MergeFleetsCommand) Empire() EmpireID { return c.EmpireID }

func (c MergeFleetsCommand) Validate(g *GameState) error {
	if c.Source == c.Target {
		return fmt.Errorf("%w: cannot merge fleet %d into itself", ErrInvalidCommand, c.Source)
	}
	if _, err := ownedFleet(g, c.EmpireID, c.Source); err != nil {
		return err
	}
	_, err := ownedFleet(g, c.EmpireID, c.Target)
	return err
}

func (c MergeFleetsCommand) Apply(g *GameState) {
	g.Fleets[c.Source].MergeInto = c.Target
}
