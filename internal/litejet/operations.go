package litejet

import (
	"context"
	"fmt"
	"strings"
)

// ActivateLoad switches a load fully on. It resolves when the panel
// reports the load's level changing, whatever level its preset selects.
func (c *Client) ActivateLoad(ctx context.Context, load int) error {
	if !validLoad(load) {
		return fmt.Errorf("%w: load %d", ErrInvalidArgument, load)
	}
	_, err := c.submit(ctx, encodeIndexCommand('A', load), c.table['A'], func(ev Event) bool {
		return ev.Kind == EventLoadLevelChanged && ev.Index == load
	})
	return err
}

// DeactivateLoad switches a load off. It resolves when the panel
// reports the load at level zero.
func (c *Client) DeactivateLoad(ctx context.Context, load int) error {
	if !validLoad(load) {
		return fmt.Errorf("%w: load %d", ErrInvalidArgument, load)
	}
	_, err := c.submit(ctx, encodeIndexCommand('B', load), c.table['B'], func(ev Event) bool {
		return ev.Kind == EventLoadLevelChanged && ev.Index == load && ev.Level == 0
	})
	return err
}

// ActivateLoadAt ramps a load to level over roughly seconds. The panel
// quantizes the duration to the load's hardware rate table; fan loads
// switch immediately. The call resolves when the panel reports the load
// arriving at the target level, so its wait window stretches with the
// quantized ramp.
func (c *Client) ActivateLoadAt(ctx context.Context, load, level int, seconds float64) error {
	if !validLoad(load) {
		return fmt.Errorf("%w: load %d", ErrInvalidArgument, load)
	}
	if !validLevel(level) {
		return fmt.Errorf("%w: level %d", ErrInvalidArgument, level)
	}
	if seconds < 0 {
		return fmt.Errorf("%w: negative ramp %v", ErrInvalidArgument, seconds)
	}

	table := rateTableForLoad(load)
	rate := secondsToRate(seconds, table)

	spec := c.table['E']
	if window := rampDuration(load, seconds) + rampGrace; window > spec.Timeout {
		spec.Timeout = window
	}

	_, err := c.submit(ctx, encodeLevelCommand(load, level, rate), spec, func(ev Event) bool {
		return ev.Kind == EventLoadLevelChanged && ev.Index == load && ev.Level == level
	})
	return err
}

// ActivateScene fires a scene. The panel sends no per-scene reply;
// resulting load changes arrive as ordinary notifications.
func (c *Client) ActivateScene(ctx context.Context, scene int) error {
	if !validScene(scene) {
		return fmt.Errorf("%w: scene %d", ErrInvalidArgument, scene)
	}
	if _, err := c.submit(ctx, encodeIndexCommand('C', scene), c.table['C'], nil); err != nil {
		return err
	}
	c.store.setSceneActive(scene, true)
	return nil
}

// DeactivateScene cancels a scene.
func (c *Client) DeactivateScene(ctx context.Context, scene int) error {
	if !validScene(scene) {
		return fmt.Errorf("%w: scene %d", ErrInvalidArgument, scene)
	}
	if _, err := c.submit(ctx, encodeIndexCommand('D', scene), c.table['D'], nil); err != nil {
		return err
	}
	c.store.setSceneActive(scene, false)
	return nil
}

// PressButton emulates pushing a keypad switch. Pair with
// ReleaseButton; the panel runs whatever the switch is programmed to do
// and reports the press back as a notification.
func (c *Client) PressButton(ctx context.Context, button int) error {
	if !validButton(button) {
		return fmt.Errorf("%w: button %d", ErrInvalidArgument, button)
	}
	_, err := c.submit(ctx, encodeIndexCommand('I', button), c.table['I'], nil)
	return err
}

// ReleaseButton emulates letting go of a keypad switch.
func (c *Client) ReleaseButton(ctx context.Context, button int) error {
	if !validButton(button) {
		return fmt.Errorf("%w: button %d", ErrInvalidArgument, button)
	}
	_, err := c.submit(ctx, encodeIndexCommand('J', button), c.table['J'], nil)
	return err
}

// QueryLoadLevel asks the panel for a load's current level and folds
// the authoritative answer into the state cache. Use State().LoadLevel
// when the cached value is enough.
func (c *Client) QueryLoadLevel(ctx context.Context, load int) (int, error) {
	if !validLoad(load) {
		return 0, fmt.Errorf("%w: load %d", ErrInvalidArgument, load)
	}
	reply, err := c.submit(ctx, encodeIndexCommand('F', load), c.table['F'], nil)
	if err != nil {
		return 0, err
	}
	level, err := parseLevelReply(reply)
	if err != nil {
		return 0, err
	}
	c.store.setLoadLevel(load, level)
	return level, nil
}

// AllLoadStates dumps every load's on/off bit in one round trip. Levels
// of loads reported on are not included in the dump, so the state cache
// is not touched; query individual loads for levels.
func (c *Client) AllLoadStates(ctx context.Context) (map[int]bool, error) {
	reply, err := c.submit(ctx, encodeCommand('G'), c.table['G'], nil)
	if err != nil {
		return nil, err
	}
	return parseBitmapReply(reply, FirstLoad, LastLoad)
}

// AllSwitchStates dumps every keypad switch's pressed bit in one round
// trip.
func (c *Client) AllSwitchStates(ctx context.Context) (map[int]bool, error) {
	reply, err := c.submit(ctx, encodeCommand('H'), c.table['H'], nil)
	if err != nil {
		return nil, err
	}
	return parseBitmapReply(reply, FirstSwitch, LastSwitch)
}

// LoadName returns the programmed name of a load, from cache when
// available.
func (c *Client) LoadName(ctx context.Context, load int) (string, error) {
	if !validLoad(load) {
		return "", fmt.Errorf("%w: load %d", ErrInvalidArgument, load)
	}
	if name := c.store.Load(load).Name; name != "" {
		return name, nil
	}
	reply, err := c.submit(ctx, encodeIndexCommand('L', load), c.table['L'], nil)
	if err != nil {
		return "", err
	}
	name := strings.TrimSpace(reply)
	c.store.setLoadName(load, name)
	return name, nil
}

// SceneName returns the programmed name of a scene, from cache when
// available.
func (c *Client) SceneName(ctx context.Context, scene int) (string, error) {
	if !validScene(scene) {
		return "", fmt.Errorf("%w: scene %d", ErrInvalidArgument, scene)
	}
	if name := c.store.Scene(scene).Name; name != "" {
		return name, nil
	}
	reply, err := c.submit(ctx, encodeIndexCommand('M', scene), c.table['M'], nil)
	if err != nil {
		return "", err
	}
	name := strings.TrimSpace(reply)
	c.store.setSceneName(scene, name)
	return name, nil
}

// ButtonName returns the programmed name of a keypad switch, from cache
// when available.
func (c *Client) ButtonName(ctx context.Context, button int) (string, error) {
	if !validButton(button) {
		return "", fmt.Errorf("%w: button %d", ErrInvalidArgument, button)
	}
	if name := c.store.Button(button).Name; name != "" {
		return name, nil
	}
	reply, err := c.submit(ctx, encodeIndexCommand('K', button), c.table['K'], nil)
	if err != nil {
		return "", err
	}
	name := strings.TrimSpace(reply)
	c.store.setButtonName(button, name)
	return name, nil
}

// Loads enumerates every load number the board supports.
func (c *Client) Loads() []int { return indexRange(FirstLoad, LastLoad) }

// Scenes enumerates every scene number the board supports.
func (c *Client) Scenes() []int { return indexRange(FirstScene, LastScene) }

// Buttons enumerates every keypad switch number the board supports.
func (c *Client) Buttons() []int { return indexRange(FirstButton, LastButton) }

func indexRange(first, last int) []int {
	out := make([]int, 0, last-first+1)
	for i := first; i <= last; i++ {
		out = append(out, i)
	}
	return out
}
