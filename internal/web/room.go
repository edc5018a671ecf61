package web

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// RoomView ships the whole in-room client. State arrives exclusively as
// server snapshots: every websocket frame carries one, and the client
// re-fetches the REST snapshot whenever the socket drops.
func RoomView(roomID string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, _ = io.WriteString(w, `<!doctype html>
<html lang="en">
  <head>
    <meta charset="utf-8"/>
    <meta name="viewport" content="width=device-width, initial-scale=1"/>
    <title>Room - TimePin</title>
    <link rel="stylesheet" href="/static/styles.css"/>
  </head>
  <body data-room-id="`)
		_, _ = io.WriteString(w, templ.EscapeString(roomID))
		_, _ = io.WriteString(w, `">
    <main class="shell">
      <header class="hero">
        <span class="tag">TimePin</span>
        <h1 id="roomCode"></h1>
        <p id="roomStatus"></p>
      </header>

      <section class="panel" id="lobbyPanel">
        <h2>Players</h2>
        <ul id="playerList" class="player-list"></ul>
        <div class="actions">
          <button id="readyBtn" class="secondary">Ready</button>
          <button id="startBtn" class="primary hidden">Start game</button>
          <button id="leaveBtn" class="ghost">Leave</button>
        </div>
      </section>

      <section class="panel hidden" id="roundPanel">
        <h2 id="roundLabel"></h2>
        <img id="roundImage" class="round-image" alt="historical photo"/>
        <div id="roundClock" class="clock"></div>
        <form id="guessForm" class="guess-form">
          <label>Year <input name="year" type="number" min="1800" max="2100" value="1950" required/></label>
          <label>Latitude <input name="lat" type="number" step="any" min="-90" max="90" value="0" required/></label>
          <label>Longitude <input name="lng" type="number" step="any" min="-180" max="180" value="0" required/></label>
          <button type="submit" class="primary">Pin it</button>
        </form>
        <div id="guessResult" class="result"></div>
      </section>

      <section class="panel hidden" id="resultsPanel">
        <h2 id="resultsTitle">Round results</h2>
        <ul id="resultsList" class="results-list"></ul>
        <h2>Leaderboard</h2>
        <ol id="leaderboard" class="leaderboard"></ol>
        <button id="nextBtn" class="primary hidden">Next round</button>
      </section>
    </main>

    <script>
      const roomID = document.body.dataset.roomId;
      const participantID = Number(sessionStorage.getItem("timepin:" + roomID) || 0);
      const api = (action) => "/api/rooms/" + encodeURIComponent(roomID) + (action ? "/" + action : "");

      const lobbyPanel = document.getElementById("lobbyPanel");
      const roundPanel = document.getElementById("roundPanel");
      const resultsPanel = document.getElementById("resultsPanel");
      const guessForm = document.getElementById("guessForm");
      const guessResult = document.getElementById("guessResult");

      let snapshot = null;
      let heartbeatTimer = null;
      let clockTimer = null;

      async function post(action, body) {
        const res = await fetch(api(action), {
          method: "POST",
          headers: { "Content-Type": "application/json" },
          body: JSON.stringify(Object.assign({ participant_id: participantID }, body || {}))
        });
        const data = await res.json().catch(() => ({}));
        if (!res.ok) throw new Error(data.error || "request failed");
        return data;
      }

      async function refetch() {
        const res = await fetch(api(""));
        if (!res.ok) { window.location = "/"; return; }
        render(await res.json());
      }

      function me() {
        if (!snapshot) return null;
        return (snapshot.participants || []).find(p => p.id === participantID) || null;
      }

      function render(next) {
        snapshot = next;
        document.getElementById("roomCode").textContent = "Room " + snapshot.code;
        document.getElementById("roomStatus").textContent = snapshot.status;

        const list = document.getElementById("playerList");
        list.innerHTML = "";
        for (const p of snapshot.participants || []) {
          const item = document.createElement("li");
          item.textContent = p.name + (p.role === "host" ? " (host)" : "") + " - " + p.status;
          item.style.color = p.avatar_color;
          list.appendChild(item);
        }

        const self = me();
        const isHost = !!self && self.role === "host";
        document.getElementById("startBtn").classList.toggle("hidden", !isHost);
        document.getElementById("nextBtn").classList.toggle("hidden", !isHost);

        const session = snapshot.session;
        const active = session && session.status === "round_active";
        const results = session && (session.status === "round_results" || session.status === "game_finished");
        lobbyPanel.classList.toggle("hidden", !!session && session.status !== "waiting");
        roundPanel.classList.toggle("hidden", !active);
        resultsPanel.classList.toggle("hidden", !results);

        if (active) {
          document.getElementById("roundLabel").textContent =
            "Round " + session.current_round + " of " + session.total_rounds;
          document.getElementById("roundImage").src = "/static/photos/" + session.current_image_id + ".jpg";
          const submitted = (session.submitted_ids || []).includes(participantID);
          guessForm.classList.toggle("hidden", submitted);
          guessResult.textContent = submitted ? "Guess locked in." : "";
          startClock(session.round_ends_at);
        } else {
          stopClock();
        }

        if (results) {
          document.getElementById("resultsTitle").textContent =
            session.status === "game_finished" ? "Final results" : "Round " + session.current_round + " results";
          document.getElementById("nextBtn").textContent =
            session.current_round >= session.total_rounds ? "Finish game" : "Next round";
          const resultsList = document.getElementById("resultsList");
          resultsList.innerHTML = "";
          for (const row of session.round_results || []) {
            const item = document.createElement("li");
            item.textContent = row.name + ": " + row.total_score +
              " (year " + row.year_score + ", place " + row.location_score + ", bonus " + row.time_bonus + ")";
            resultsList.appendChild(item);
          }
        }

        const board = document.getElementById("leaderboard");
        board.innerHTML = "";
        for (const entry of snapshot.leaderboard || []) {
          const item = document.createElement("li");
          item.textContent = entry.name + " - " + entry.total_points;
          board.appendChild(item);
        }
      }

      function startClock(endsAt) {
        stopClock();
        const deadline = Date.parse(endsAt);
        if (!deadline) return;
        const tick = () => {
          const left = Math.max(0, Math.round((deadline - Date.now()) / 1000));
          document.getElementById("roundClock").textContent = left + "s";
        };
        tick();
        clockTimer = setInterval(tick, 1000);
      }

      function stopClock() {
        if (clockTimer) { clearInterval(clockTimer); clockTimer = null; }
      }

      document.getElementById("readyBtn").addEventListener("click", () => post("ready").catch(() => {}));
      document.getElementById("startBtn").addEventListener("click", () => post("start").catch(err => alert(err.message)));
      document.getElementById("nextBtn").addEventListener("click", () => post("next").catch(err => alert(err.message)));
      document.getElementById("leaveBtn").addEventListener("click", async () => {
        await post("leave").catch(() => {});
        window.location = "/";
      });

      guessForm.addEventListener("submit", async (event) => {
        event.preventDefault();
        if (!snapshot || !snapshot.session) return;
        try {
          const data = await post("guesses", {
            round_number: snapshot.session.current_round,
            year: Number(guessForm.elements.year.value),
            lat: Number(guessForm.elements.lat.value),
            lng: Number(guessForm.elements.lng.value)
          });
          guessResult.textContent = "Scored " + data.total_score + " points.";
        } catch (err) {
          guessResult.textContent = err.message;
        }
      });

      function connect() {
        const wsProto = window.location.protocol === "https:" ? "wss" : "ws";
        const ws = new WebSocket(wsProto + "://" + window.location.host + "/ws/rooms/" + encodeURIComponent(roomID));
        ws.addEventListener("message", (event) => {
          const frame = JSON.parse(event.data);
          if (frame.room) render(frame.room);
        });
        ws.addEventListener("close", () => {
          stopClock();
          setTimeout(() => { refetch().then(connect).catch(() => {}); }, 2000);
        });
      }

      refetch().then(() => {
        connect();
        if (participantID > 0 && snapshot) {
          const interval = (snapshot.heartbeat_seconds || 30) * 1000;
          heartbeatTimer = setInterval(() => post("heartbeat").catch(() => {}), interval);
        }
      });
    </script>
  </body>
</html>
`)
		return nil
	})
}
