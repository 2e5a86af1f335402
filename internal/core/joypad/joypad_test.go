package joypad

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestJoypad_ReadNoSelectionIsAllReleased(t *testing.T) {
	j := New()
	require.Equal(t, byte(0xFF), j.Read())
}

func TestJoypad_DPadSelection(t *testing.T) {
	j := New()
	j.SetButtons(Right | Down)
	j.WriteSelect(0x20) // clear bit 4: select D-pad
	v := j.Read()
	require.Zero(t, v&0x01, "Right must read low")
	require.NotZero(t, v&0x02, "Left must read high")
	require.Zero(t, v&0x08, "Down must read low")
}

func TestJoypad_ButtonSelection(t *testing.T) {
	j := New()
	j.SetButtons(A | Start)
	j.WriteSelect(0x10) // clear bit 5: select buttons
	v := j.Read()
	require.Zero(t, v&0x01, "A must read low")
	require.Zero(t, v&0x08, "Start must read low")
	require.NotZero(t, v&0x02, "B must read high")
}

func TestJoypad_BothGroupsSelectedCompose(t *testing.T) {
	j := New()
	j.SetButtons(Right | A)
	j.WriteSelect(0x00) // both groups selected
	v := j.Read()
	require.Zero(t, v&0x01, "Right and A share bit 0, either pressed pulls it low")
}

func TestJoypad_UnselectedGroupReadsReleased(t *testing.T) {
	j := New()
	j.SetButtons(Right)
	j.WriteSelect(0x10) // select buttons only, D-pad not selected
	v := j.Read()
	require.Equal(t, byte(0x0F), v&0x0F, "D-pad press must not leak through when buttons are selected")
}

func TestJoypad_IRQFiresOnNewlyPressedSelectedButton(t *testing.T) {
	j := New()
	fired := 0
	j.IRQ = func() { fired++ }
	j.WriteSelect(0x20) // select D-pad
	require.Zero(t, fired)

	j.SetButtons(Down)
	require.Equal(t, 1, fired, "a press under the active selection must raise the interrupt")

	j.SetButtons(Down) // no change, no new edge
	require.Equal(t, 1, fired)

	j.SetButtons(Down | Up)
	require.Equal(t, 2, fired, "an additional press is a fresh falling edge")
}

func TestJoypad_IRQDoesNotFireForUnselectedGroup(t *testing.T) {
	j := New()
	fired := 0
	j.IRQ = func() { fired++ }
	j.WriteSelect(0x10) // select buttons only
	j.SetButtons(Right) // D-pad press, but D-pad isn't selected
	require.Zero(t, fired)
}

func TestJoypad_SelectingGroupWithAlreadyPressedButtonFires(t *testing.T) {
	j := New()
	fired := 0
	j.IRQ = func() { fired++ }
	j.SetButtons(A) // pressed before any group is selected
	require.Zero(t, fired)
	j.WriteSelect(0x10) // now select buttons -> A's bit falls
	require.Equal(t, 1, fired)
}
